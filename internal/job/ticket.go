package job

import (
	"context"

	"fleetgear/internal/api"
)

// Ticket is the caller's view of a job. It exposes state, status log and
// outcome without giving access to the job's controls.
type Ticket struct {
	job *Job
}

// ID returns the job id.
func (t *Ticket) ID() string {
	return t.job.id
}

// Type returns the operation kind of the job.
func (t *Ticket) Type() api.JobType {
	return t.job.jobType
}

// State returns the current job state.
func (t *Ticket) State() api.JobState {
	return t.job.State()
}

// Err returns the captured error of a failed job, nil otherwise.
func (t *Ticket) Err() error {
	return t.job.Err()
}

// StatusLog returns a copy of the status log.
func (t *Ticket) StatusLog() []api.StatusEntry {
	t.job.mu.RLock()
	defer t.job.mu.RUnlock()
	return append([]api.StatusEntry(nil), t.job.log...)
}

// Done is closed once the job reaches a terminal state.
func (t *Ticket) Done() <-chan struct{} {
	return t.job.done
}

// Wait blocks until the job is terminal or ctx is done.
func (t *Ticket) Wait(ctx context.Context) (api.JobState, error) {
	select {
	case <-t.job.done:
		return t.State(), nil
	case <-ctx.Done():
		return t.State(), ctx.Err()
	}
}

// Info returns a serializable snapshot of the job.
func (t *Ticket) Info() api.TicketInfo {
	j := t.job
	j.mu.RLock()
	defer j.mu.RUnlock()

	info := api.TicketInfo{
		ID:        j.id,
		Type:      j.jobType,
		State:     j.state,
		CreatedAt: j.createdAt,
		StatusLog: append([]api.StatusEntry(nil), j.log...),
	}
	if j.completedAt != nil {
		completed := *j.completedAt
		info.CompletedAt = &completed
	}
	if j.err != nil {
		info.Error = j.err.Error()
	}
	return info
}

// Terminated reports whether the job's background context has been torn down.
func (t *Ticket) Terminated() bool {
	return !t.job.Alive()
}

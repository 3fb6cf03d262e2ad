package job

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"gopkg.in/tomb.v2"

	"fleetgear/internal/api"
	"fleetgear/pkg/logging"
)

const (
	updateBufferSize     = 64
	subscriberBufferSize = 64
)

// Job tracks one asynchronous unit of work.
//
// A job starts Pending, moves to Running when work begins and ends in
// exactly one of Success or Failure. Progress is reported through a
// timestamped status log. Each job owns a supervised background goroutine
// that streams status entries to subscribers; Terminate tears it down.
type Job struct {
	id      string
	jobType api.JobType
	clock   clock.Clock

	tomb    tomb.Tomb
	updates chan api.StatusEntry
	done    chan struct{}

	mu          sync.RWMutex
	state       api.JobState
	log         []api.StatusEntry
	err         error
	createdAt   time.Time
	completedAt *time.Time
	subscribers []subscriber
	closed      bool
}

type subscriber struct {
	ch       chan api.StatusEntry
	lossless bool
}

// Option configures a Job.
type Option func(*Job)

// WithClock sets the clock used to timestamp status entries.
func WithClock(c clock.Clock) Option {
	return func(j *Job) {
		j.clock = c
	}
}

// WithID overrides the generated ticket id.
func WithID(id string) Option {
	return func(j *Job) {
		j.id = id
	}
}

// New creates a Pending job of the given type and starts its background context.
func New(jobType api.JobType, opts ...Option) *Job {
	j := &Job{
		id:      uuid.New().String(),
		jobType: jobType,
		clock:   clock.WallClock,
		updates: make(chan api.StatusEntry, updateBufferSize),
		done:    make(chan struct{}),
		state:   api.JobPending,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.createdAt = j.clock.Now()

	j.tomb.Go(j.loop)

	logging.Debug("Job", "Created %s job %s", j.jobType, j.id)
	return j
}

// ID returns the ticket id.
func (j *Job) ID() string {
	return j.id
}

// Type returns the operation kind.
func (j *Job) Type() api.JobType {
	return j.jobType
}

// State returns the current state.
func (j *Job) State() api.JobState {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

// Err returns the error captured by ReportFailure.
func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

// Ticket returns the read-only handle callers use to observe the job.
func (j *Job) Ticket() *Ticket {
	return &Ticket{job: j}
}

// ReportRunning moves a Pending job to Running and records msg.
func (j *Job) ReportRunning(msg string) {
	j.transition(api.JobRunning, api.StatusInfo, msg, nil)
}

// SetStatus appends msg to the status log.
func (j *Job) SetStatus(msg string) {
	j.record(api.StatusInfo, msg)
}

// Warn appends a warning-level msg to the status log.
func (j *Job) Warn(msg string) {
	j.record(api.StatusWarning, msg)
}

// ReportSuccess marks the job successful. Only the first terminal report counts.
func (j *Job) ReportSuccess() {
	j.transition(api.JobSuccess, api.StatusInfo, "completed successfully", nil)
}

// ReportFailure marks the job failed and captures err. Only the first
// terminal report counts.
func (j *Job) ReportFailure(err error) {
	msg := "failed"
	if err != nil {
		msg = "failed: " + err.Error()
	}
	j.transition(api.JobFailure, api.StatusError, msg, err)
}

// Alive reports whether the background context is still running.
func (j *Job) Alive() bool {
	return j.tomb.Alive()
}

// Terminate stops the background context and waits for it. Calling it on
// an already terminated job does nothing.
func (j *Job) Terminate() {
	j.tomb.Kill(nil)
	if err := j.tomb.Wait(); err != nil {
		logging.Error("Job", err, "Background context of job %s exited with an error", j.id)
	}
}

// Subscribe returns a channel receiving every status entry recorded from
// now on. The channel is closed when the job is terminated. Slow readers
// miss entries; the status log stays complete.
func (j *Job) Subscribe() <-chan api.StatusEntry {
	return j.subscribe(false)
}

// Follow is Subscribe without dropped entries: the job waits for the
// reader, so the reader must drain the channel until it is closed.
func (j *Job) Follow() <-chan api.StatusEntry {
	return j.subscribe(true)
}

func (j *Job) subscribe(lossless bool) <-chan api.StatusEntry {
	ch := make(chan api.StatusEntry, subscriberBufferSize)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		close(ch)
		return ch
	}
	j.subscribers = append(j.subscribers, subscriber{ch: ch, lossless: lossless})
	return ch
}

func (j *Job) record(level api.StatusLevel, msg string) {
	j.mu.Lock()
	if j.state.IsTerminal() {
		j.mu.Unlock()
		logging.Debug("Job", "Ignoring status %q for finished job %s", msg, j.id)
		return
	}
	entry := j.appendLocked(level, msg)
	j.mu.Unlock()

	j.emit(entry)
}

func (j *Job) transition(to api.JobState, level api.StatusLevel, msg string, err error) {
	j.mu.Lock()
	if j.state.IsTerminal() {
		current := j.state
		j.mu.Unlock()
		logging.Debug("Job", "Ignoring transition of job %s from %s to %s", j.id, current, to)
		return
	}

	j.state = to
	if to.IsTerminal() {
		j.err = err
		now := j.clock.Now()
		j.completedAt = &now
	}
	entry := j.appendLocked(level, msg)
	j.mu.Unlock()

	if to.IsTerminal() {
		close(j.done)
	}
	j.emit(entry)

	logging.Debug("Job", "Job %s is now %s", j.id, to)
}

func (j *Job) appendLocked(level api.StatusLevel, msg string) api.StatusEntry {
	entry := api.StatusEntry{
		Timestamp: j.clock.Now(),
		Level:     level,
		State:     j.state,
		Message:   msg,
	}
	j.log = append(j.log, entry)
	return entry
}

func (j *Job) emit(entry api.StatusEntry) {
	select {
	case j.updates <- entry:
	case <-j.tomb.Dying():
	}
}

// loop is the job's background context: it forwards status entries to
// subscribers until the job is terminated.
func (j *Job) loop() error {
	for {
		select {
		case <-j.tomb.Dying():
			j.drain()
			j.closeSubscribers()
			return tomb.ErrDying
		case entry := <-j.updates:
			j.publish(entry)
		}
	}
}

func (j *Job) drain() {
	for {
		select {
		case entry := <-j.updates:
			j.publish(entry)
		default:
			return
		}
	}
}

func (j *Job) publish(entry api.StatusEntry) {
	j.mu.RLock()
	subs := append([]subscriber(nil), j.subscribers...)
	j.mu.RUnlock()

	for _, sub := range subs {
		if sub.lossless {
			sub.ch <- entry
			continue
		}
		select {
		case sub.ch <- entry:
		default:
			logging.Debug("Job", "Subscriber of job %s is full, dropping status entry", j.id)
		}
	}
}

func (j *Job) closeSubscribers() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, sub := range j.subscribers {
		close(sub.ch)
	}
	j.subscribers = nil
	j.closed = true
}

package api

import (
	"time"
)

// JobState is the lifecycle state of a tracked job.
type JobState string

const (
	JobPending JobState = "Pending"
	JobRunning JobState = "Running"
	JobSuccess JobState = "Success"
	JobFailure JobState = "Failure"
)

// IsTerminal reports whether no further transition can happen.
func (s JobState) IsTerminal() bool {
	return s == JobSuccess || s == JobFailure
}

// JobType tags a job with the kind of operation it tracks.
type JobType string

const (
	// JobTypeDynamicServiceStateChange is used for every service state change.
	JobTypeDynamicServiceStateChange JobType = "dynamic_service_state_change"
)

// StatusLevel classifies a status log entry.
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
)

// StatusEntry is one timestamped message in a job's status log.
type StatusEntry struct {
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Level     StatusLevel `json:"level" yaml:"level"`
	State     JobState    `json:"state" yaml:"state"`
	Message   string      `json:"message" yaml:"message"`
}

// TicketInfo is a serializable snapshot of a job as seen through its ticket.
type TicketInfo struct {
	ID          string        `json:"id" yaml:"id"`
	Type        JobType       `json:"type" yaml:"type"`
	State       JobState      `json:"state" yaml:"state"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
	StatusLog   []StatusEntry `json:"statusLog" yaml:"statusLog"`
}

// ServiceStates lists the desired states every service is expected to understand.
// Other values are accepted with a warning.
var ServiceStates = []string{"start", "stop", "restart"}

// StatusReporter receives human readable progress messages. *job.Job
// satisfies it.
type StatusReporter interface {
	SetStatus(msg string)
}

package ports

import (
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// EventType identifies a controller notification.
type EventType string

const (
	// EventJobStarted is published once the job holds the slot.
	EventJobStarted EventType = "job_started"
	// EventMessageClassified carries one classified output line.
	EventMessageClassified EventType = "message_classified"
	// EventAbortTimedOut is a warning: the process ignored the graceful
	// termination request and was killed.
	EventAbortTimedOut EventType = "abort_timed_out"
	// EventJobFinished carries the terminal outcome and summary. It is
	// delivered before the controller returns to idle.
	EventJobFinished EventType = "job_finished"
)

// Event is a controller notification. Fields beyond Type and JobID are
// set according to Type.
type Event struct {
	Err     error                 // EventAbortTimedOut
	Message *entities.LogMessage  // EventMessageClassified
	Summary *execution.JobSummary // EventJobFinished
	Type    EventType
	Profile string
	Outcome values.JobState          // EventJobFinished
	Counts  execution.SeverityCounts // counts including Message
	JobID   values.JobID
}

// Observer receives controller events. Events are delivered in order on
// the job's delivery goroutine; OnEvent must return quickly and defer
// long-running work.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(e).
func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}

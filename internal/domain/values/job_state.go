package values

import "fmt"

// JobState is a state of the compose job state machine.
//
//	Idle -> Starting -> Running -> (Succeeded | Failed | Aborted) -> Idle
//
// Starting may also go straight to Failed (spawn error) or Aborted
// (abort requested while the process was being spawned).
type JobState string

const (
	// StateIdle means no job occupies the slot
	StateIdle JobState = "idle"
	// StateStarting means the launch config is resolved and the spawn is in progress
	StateStarting JobState = "starting"
	// StateRunning means output is streaming and being classified
	StateRunning JobState = "running"
	// StateSucceeded means exit code 0 with no error or critical messages
	StateSucceeded JobState = "succeeded"
	// StateFailed means a non-zero exit, a spawn failure, or recorded errors
	StateFailed JobState = "failed"
	// StateAborted means the job was stopped by a user or fail-fast abort
	StateAborted JobState = "aborted"
)

var transitions = map[JobState][]JobState{
	StateIdle:      {StateStarting},
	StateStarting:  {StateRunning, StateFailed, StateAborted},
	StateRunning:   {StateSucceeded, StateFailed, StateAborted},
	StateSucceeded: {StateIdle},
	StateFailed:    {StateIdle},
	StateAborted:   {StateIdle},
}

// IsTerminal returns true for the three outcome states.
func (s JobState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateAborted
}

// IsActive returns true while a job holds the slot and has no outcome yet.
func (s JobState) IsActive() bool {
	return s == StateStarting || s == StateRunning
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s JobState) CanTransitionTo(next JobState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Validate returns an error if the state value is invalid
func (s JobState) Validate() error {
	if _, ok := transitions[s]; !ok {
		return fmt.Errorf("invalid job state: %s", s)
	}
	return nil
}

// String returns the string representation
func (s JobState) String() string {
	return string(s)
}

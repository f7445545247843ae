package services

import (
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// OutcomeInput is everything known about a job once its process is gone.
type OutcomeInput struct {
	AbortReason values.AbortReason
	Counts      execution.SeverityCounts
	ExitCode    int
	SpawnFailed bool
}

// EvaluateOutcome picks the terminal state for a finished job.
//
// Precedence: an abort request (user or fail-fast) or any critical message
// gives Aborted, then a spawn failure or non-zero exit gives Failed, then
// recorded error messages give Failed, otherwise Succeeded.
func EvaluateOutcome(in OutcomeInput) values.JobState {
	switch {
	case in.AbortReason != values.AbortNone:
		return values.StateAborted
	case in.Counts.Critical > 0:
		return values.StateAborted
	case in.SpawnFailed:
		return values.StateFailed
	case in.ExitCode != 0:
		return values.StateFailed
	case in.Counts.HasProblems():
		return values.StateFailed
	default:
		return values.StateSucceeded
	}
}

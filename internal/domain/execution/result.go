// Package execution provides domain models for compose job results.
package execution

import (
	"fmt"
	"strings"
	"time"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// ExitCodeNone marks a job whose process never reported an exit code.
const ExitCodeNone = -1

// SeverityCounts holds the number of counted messages per severity.
type SeverityCounts struct {
	Info     int `json:"info" yaml:"info"`
	Warning  int `json:"warning" yaml:"warning"`
	Error    int `json:"error" yaml:"error"`
	Critical int `json:"critical" yaml:"critical"`
}

// Add increments the counter for sev.
func (c *SeverityCounts) Add(sev values.Severity) {
	switch sev.Level() {
	case values.SevCritical.Level():
		c.Critical++
	case values.SevError.Level():
		c.Error++
	case values.SevWarning.Level():
		c.Warning++
	default:
		c.Info++
	}
}

// Get returns the counter for sev.
func (c SeverityCounts) Get(sev values.Severity) int {
	switch sev.Level() {
	case values.SevCritical.Level():
		return c.Critical
	case values.SevError.Level():
		return c.Error
	case values.SevWarning.Level():
		return c.Warning
	default:
		return c.Info
	}
}

// Total returns the number of counted messages.
func (c SeverityCounts) Total() int {
	return c.Info + c.Warning + c.Error + c.Critical
}

// HasProblems is true when any error or critical message was recorded.
func (c SeverityCounts) HasProblems() bool {
	return c.Error > 0 || c.Critical > 0
}

// String renders the counts as "info=1 warning=0 error=0 critical=0".
func (c SeverityCounts) String() string {
	return fmt.Sprintf("info=%d warning=%d error=%d critical=%d", c.Info, c.Warning, c.Error, c.Critical)
}

// JobSummary is the human-readable outcome of one compose job.
type JobSummary struct {
	StartedAt     time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time          `json:"finished_at" yaml:"finished_at"`
	Profile       string             `json:"profile" yaml:"profile"`
	Outcome       values.JobState    `json:"outcome" yaml:"outcome"`
	AbortReason   values.AbortReason `json:"abort_reason,omitempty" yaml:"abort_reason,omitempty"`
	SpawnError    string             `json:"spawn_error,omitempty" yaml:"spawn_error,omitempty"`
	Argv          []string           `json:"argv,omitempty" yaml:"argv,omitempty"`
	Suggestions   []string           `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Counts        SeverityCounts     `json:"counts" yaml:"counts"`
	Duration      time.Duration      `json:"duration" yaml:"duration"`
	ExitCode      int                `json:"exit_code" yaml:"exit_code"`
	JobID         values.JobID       `json:"job_id" yaml:"job_id"`
	RunID         values.RunID       `json:"run_id" yaml:"run_id"`
	AbortTimedOut bool               `json:"abort_timed_out,omitempty" yaml:"abort_timed_out,omitempty"`
}

// Text returns a one-paragraph description suitable for a status line.
func (s JobSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", s.JobID, s.Outcome)
	if s.Profile != "" {
		fmt.Fprintf(&b, " (profile %q)", s.Profile)
	}
	if s.ExitCode != ExitCodeNone {
		fmt.Fprintf(&b, ", exit code %d", s.ExitCode)
	}
	if s.AbortReason != values.AbortNone {
		fmt.Fprintf(&b, ", aborted by %s", s.AbortReason)
		if s.AbortTimedOut {
			b.WriteString(" (forced)")
		}
	}
	if s.SpawnError != "" {
		fmt.Fprintf(&b, ", spawn failed: %s", s.SpawnError)
	}
	fmt.Fprintf(&b, "; %s", s.Counts)
	return b.String()
}

// JobRecord is a finished job together with its full message log.
// Raw lines stay available here after the controller returns to idle.
type JobRecord struct {
	Summary  JobSummary            `json:"summary" yaml:"summary"`
	Messages []entities.LogMessage `json:"messages" yaml:"messages"`
}

// NewJobRecord creates a record for a finished job.
func NewJobRecord(summary JobSummary, messages []entities.LogMessage) *JobRecord {
	return &JobRecord{Summary: summary, Messages: messages}
}

// Finalize stamps the end time and derives the duration and counts from
// the message log. Continuation lines are excluded from the counts.
func (r *JobRecord) Finalize(end time.Time) {
	r.Summary.FinishedAt = end
	r.Summary.Duration = end.Sub(r.Summary.StartedAt)
	r.calculateCounts()
}

func (r *JobRecord) calculateCounts() {
	var counts SeverityCounts
	for _, m := range r.Messages {
		if m.Counted() {
			counts.Add(m.Severity)
		}
	}
	r.Summary.Counts = counts
}

// Problems returns the counted messages at error severity or above.
func (r *JobRecord) Problems() []entities.LogMessage {
	var out []entities.LogMessage
	for _, m := range r.Messages {
		if m.Counted() && m.Severity.IsProblem() {
			out = append(out, m)
		}
	}
	return out
}

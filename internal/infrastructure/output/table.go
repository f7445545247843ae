package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TableFormatter formats job records as a human-readable report.
// Only messages at warning level or above are listed; the full log is
// available through the json and yaml formats.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true,
	}
}

func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the job record as a table.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) Format(record *execution.JobRecord) error {
	s := record.Summary
	rule := f.colorize(strings.Repeat("─", 80), colorGray)

	fmt.Fprintln(f.writer, rule)
	fmt.Fprintf(f.writer, "Profile:  %s\n", f.colorize(s.Profile, colorBold))
	fmt.Fprintf(f.writer, "Job:      %s (run %s)\n", s.JobID, s.RunID)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(f.writer, "Started:  %s\n", s.StartedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(f.writer, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	if len(s.Argv) > 0 {
		fmt.Fprintf(f.writer, "Command:  %s\n", f.colorize(strings.Join(s.Argv, " "), colorCyan))
	}
	fmt.Fprintln(f.writer)

	notable := notableMessages(record.Messages)
	if len(notable) == 0 {
		fmt.Fprintln(f.writer, "No warnings or errors reported.")
	} else {
		fmt.Fprintln(f.writer, f.colorize("Messages:", colorBold))
		fmt.Fprintln(f.writer, rule)
		for _, m := range notable {
			f.formatMessage(m)
		}
	}
	fmt.Fprintln(f.writer, rule)
	fmt.Fprintln(f.writer)

	if len(s.Suggestions) > 0 {
		fmt.Fprintln(f.writer, f.colorize("Suggestions:", colorBold))
		for _, sg := range s.Suggestions {
			fmt.Fprintf(f.writer, "  - %s\n", sg)
		}
		fmt.Fprintln(f.writer)
	}

	f.formatSummary(s)
	return nil
}

// notableMessages keeps warning-or-worse messages along with their
// continuation lines.
func notableMessages(messages []entities.LogMessage) []entities.LogMessage {
	var out []entities.LogMessage
	for _, m := range messages {
		if m.Severity.IsHigherOrEqual(values.SevWarning) {
			out = append(out, m)
		}
	}
	return out
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatMessage(m entities.LogMessage) {
	if m.Continuation {
		fmt.Fprintf(f.writer, "%6s   %s\n", "", f.colorize(m.Raw, colorGray))
		return
	}

	label := f.colorize(fmt.Sprintf("%-8s", strings.ToUpper(m.Severity.String())), severityColor(m.Severity))
	fmt.Fprintf(f.writer, "%6d %s %s\n", m.Seq, label, m.Raw)
	if m.Note != "" {
		fmt.Fprintf(f.writer, "%6s   %s\n", "", f.colorize(m.Note, colorYellow))
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(s execution.JobSummary) {
	symbol, color := outcomeInfo(s.Outcome)

	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Outcome:   %s %s\n", f.colorize(symbol, color), f.colorize(strings.ToUpper(s.Outcome.String()), color))
	if s.AbortReason != values.AbortNone {
		reason := s.AbortReason.String()
		if s.AbortTimedOut {
			reason += " (forced kill)"
		}
		fmt.Fprintf(f.writer, "Aborted:   %s\n", reason)
	}
	if s.SpawnError != "" {
		fmt.Fprintf(f.writer, "Spawn:     %s\n", f.colorize(s.SpawnError, colorRed))
	}
	if s.ExitCode != execution.ExitCodeNone {
		fmt.Fprintf(f.writer, "Exit code: %d\n", s.ExitCode)
	}
	fmt.Fprintf(f.writer, "Messages:  %d counted\n", s.Counts.Total())
	fmt.Fprintf(f.writer, "  %s Critical: %d\n", f.colorize("✗", colorRed), s.Counts.Critical)
	fmt.Fprintf(f.writer, "  %s Error:    %d\n", f.colorize("✗", colorRed), s.Counts.Error)
	fmt.Fprintf(f.writer, "  %s Warning:  %d\n", f.colorize("⚠", colorYellow), s.Counts.Warning)
	fmt.Fprintf(f.writer, "  %s Info:     %d\n", f.colorize("·", colorGray), s.Counts.Info)
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
}

func severityColor(sev values.Severity) string {
	switch {
	case sev.IsProblem():
		return colorRed
	case sev.Equals(values.SevWarning):
		return colorYellow
	default:
		return colorGray
	}
}

func outcomeInfo(state values.JobState) (string, string) {
	switch state {
	case values.StateSucceeded:
		return "✓", colorGreen
	case values.StateFailed:
		return "✗", colorRed
	case values.StateAborted:
		return "⊘", colorYellow
	default:
		return "?", colorReset
	}
}

package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

const sarifTimeFormat = "2006-01-02T15:04:05.000Z"

type sarifMapper struct {
	record *execution.JobRecord
	cwd    string
	rules  map[string]bool
}

func newSARIFMapper(record *execution.JobRecord) *sarifMapper {
	cwd, _ := os.Getwd()
	return &sarifMapper{
		record: record,
		cwd:    cwd,
		rules:  make(map[string]bool),
	}
}

func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addResults(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addResults adds one result per reportable message, registering each
// rule the first time its id is seen.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for i, msg := range m.record.Messages {
		if !msg.Counted() || !msg.Severity.IsHigherOrEqual(values.SevWarning) {
			continue
		}

		id := ruleID(msg.Kind, msg.Severity)
		if !m.rules[id] {
			m.rules[id] = true
			run.Tool.Driver.AddRule(m.newRule(id, msg))
		}
		run.AddResult(m.mapMessage(id, msg, continuationsOf(m.record, i)))
	}
}

func (m *sarifMapper) newRule(id string, msg entities.LogMessage) *sarif.ReportingDescriptor {
	desc := describeRule(id)
	rule := sarif.NewReportingDescriptor().WithID(id)
	rule.WithName(id)
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
	rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
		Level: severityToLevel(msg.Severity),
	})

	props := sarif.NewPropertyBag()
	props.Add("severity", msg.Severity.String())
	rule.WithProperties(props)
	return rule
}

func (m *sarifMapper) mapMessage(id string, msg entities.LogMessage, continuation []string) *sarif.Result {
	result := sarif.NewRuleResult(id)
	result.Level = severityToLevel(msg.Severity)
	result.Kind = "fail"

	text := msg.Raw
	if len(continuation) > 0 {
		text += "\n" + strings.Join(continuation, "\n")
	}
	result.Message = sarif.NewTextMessage(text)

	props := sarif.NewPropertyBag()
	props.Add("seq", msg.Seq)
	props.Add("severity", msg.Severity.String())
	if msg.Note != "" {
		props.Add("note", msg.Note)
	}
	result.WithProperties(props)
	return result
}

func (m *sarifMapper) addInvocation(run *sarif.Run) {
	s := m.record.Summary
	invocation := sarif.NewInvocation()
	invocation.ExecutionSuccessful = ptrBool(s.Outcome == values.StateSucceeded)

	if !s.StartedAt.IsZero() {
		start := s.StartedAt.UTC().Format(sarifTimeFormat)
		invocation.StartTimeUtc = &start
	}
	if !s.FinishedAt.IsZero() {
		end := s.FinishedAt.UTC().Format(sarifTimeFormat)
		invocation.EndTimeUtc = &end
	}
	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}
	if m.cwd != "" {
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI("file://" + filepath.ToSlash(m.cwd))
	}

	props := sarif.NewPropertyBag()
	props.Add("profile", s.Profile)
	props.Add("jobId", s.JobID.String())
	props.Add("runId", s.RunID.String())
	props.Add("outcome", s.Outcome.String())
	props.Add("exitCode", s.ExitCode)
	if len(s.Argv) > 0 {
		props.Add("argv", s.Argv)
	}
	if s.AbortReason != values.AbortNone {
		props.Add("abortReason", s.AbortReason.String())
		props.Add("abortTimedOut", s.AbortTimedOut)
	}
	if s.SpawnError != "" {
		props.Add("spawnError", s.SpawnError)
	}
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("counts", m.record.Summary.Counts)
	if len(m.record.Summary.Suggestions) > 0 {
		props.Add("suggestions", m.record.Summary.Suggestions)
	}
	run.WithProperties(props)
}

// ruleID names the rule a message reports under. Unclassified messages
// fall back to a per-severity id.
func ruleID(kind values.MessageKind, sev values.Severity) string {
	if kind != values.KindNone {
		return string(kind)
	}
	return "unclassified_" + sev.String()
}

// describeRule turns "err_sprite_size" into "Error: sprite size".
func describeRule(id string) string {
	prefix, rest, ok := strings.Cut(id, "_")
	if !ok {
		return id
	}
	label := map[string]string{
		"crit":         "Critical",
		"err":          "Error",
		"warn":         "Warning",
		"unclassified": "Unclassified",
	}[prefix]
	if label == "" {
		return strings.ReplaceAll(id, "_", " ")
	}
	return label + ": " + strings.ReplaceAll(rest, "_", " ")
}

func severityToLevel(sev values.Severity) string {
	switch {
	case sev.IsProblem():
		return "error"
	case sev.Equals(values.SevWarning):
		return "warning"
	default:
		return "note"
	}
}

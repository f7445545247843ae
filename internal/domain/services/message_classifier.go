package services

import (
	"strings"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// MessageClassifier turns raw output lines into LogMessages using an
// ordered rule table. The first matching rule wins; lines that match
// nothing are info.
//
// A MessageClassifier is immutable after construction and safe for
// concurrent use.
type MessageClassifier struct {
	rules []ClassificationRule
}

// NewMessageClassifier creates a classifier. Extra rules are tried before
// the built-in table so users can override known messages.
func NewMessageClassifier(extra ...ClassificationRule) *MessageClassifier {
	rules := make([]ClassificationRule, 0, len(extra)+32)
	rules = append(rules, extra...)
	rules = append(rules, DefaultRules()...)
	return &MessageClassifier{rules: rules}
}

// Rules returns a copy of the effective rule table.
func (c *MessageClassifier) Rules() []ClassificationRule {
	return append([]ClassificationRule(nil), c.rules...)
}

// Classify classifies line. prev is the message directly before it in the
// same stream, or nil for the first line.
//
// An indented line that matches no rule continues prev when prev is above
// info: it takes over prev's severity and kind and is flagged as a
// continuation. This keeps stack traces and wrapped messages together.
func (c *MessageClassifier) Classify(seq int, line string, prev *entities.LogMessage) entities.LogMessage {
	line = strings.TrimRight(line, "\r\n")
	msg := entities.LogMessage{Seq: seq, Raw: line, Severity: values.SevInfo}

	if strings.TrimSpace(line) == "" {
		return msg
	}

	for _, r := range c.rules {
		if r.Pattern.MatchString(line) {
			msg.Severity = r.Severity
			msg.Kind = r.Kind
			msg.Note = r.Note
			return msg
		}
	}

	if prev != nil && prev.Severity.IsHigherThan(values.SevInfo) && isIndented(line) {
		msg.Severity = prev.Severity
		msg.Kind = prev.Kind
		msg.Continuation = true
	}
	return msg
}

func isIndented(line string) bool {
	return line[0] == ' ' || line[0] == '\t'
}

// ClassifierStream classifies the lines of one output stream in order,
// numbering them and carrying the previous message as context.
// Not safe for concurrent use; each stream gets its own.
type ClassifierStream struct {
	classifier *MessageClassifier
	prev       *entities.LogMessage
	seq        int
}

// NewStream starts a new numbered stream.
func (c *MessageClassifier) NewStream() *ClassifierStream {
	return &ClassifierStream{classifier: c}
}

// Next classifies the next line of the stream.
func (s *ClassifierStream) Next(line string) entities.LogMessage {
	s.seq++
	msg := s.classifier.Classify(s.seq, line, s.prev)
	s.prev = &msg
	return msg
}

package entities

import (
	"fmt"
	"strings"

	"github.com/jessica-dev/jessica/internal/domain/values"
)

// LogMessage is one classified line of compose tool output.
type LogMessage struct {
	Raw      string             `json:"raw" yaml:"raw"`
	Note     string             `json:"note,omitempty" yaml:"note,omitempty"`
	Kind     values.MessageKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Severity values.Severity    `json:"severity" yaml:"severity"`
	// Seq is the 1-based position of the line in the output stream
	Seq int `json:"seq" yaml:"seq"`
	// Continuation marks a line that extends the previous message.
	// Continuations inherit its severity but are not counted again.
	Continuation bool `json:"continuation,omitempty" yaml:"continuation,omitempty"`
}

// Counted reports whether the message contributes to severity counts.
func (m LogMessage) Counted() bool {
	return !m.Continuation
}

// String formats the message the way the compose log shows it.
func (m LogMessage) String() string {
	return fmt.Sprintf("%10s %s", "["+strings.ToUpper(m.Severity.String())+"]", m.Raw)
}


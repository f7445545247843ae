package values

import (
	"fmt"
	"strings"
)

// Severity classifies a single line of compose tool output.
// The zero value is SevInfo, so an unclassified message is informational.
type Severity struct {
	value SeverityLevel
}

// SeverityLevel is the internal representation
type SeverityLevel int

const (
	SeverityInfo     SeverityLevel = 0
	SeverityWarning  SeverityLevel = 1
	SeverityError    SeverityLevel = 2
	SeverityCritical SeverityLevel = 3
)

// Predefined severity values
var (
	SevInfo     = Severity{SeverityInfo}
	SevWarning  = Severity{SeverityWarning}
	SevError    = Severity{SeverityError}
	SevCritical = Severity{SeverityCritical}
)

// AllSeverities lists every severity in ascending order.
func AllSeverities() []Severity {
	return []Severity{SevInfo, SevWarning, SevError, SevCritical}
}

// NewSeverity creates a Severity from string
func NewSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "info", "":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "critical":
		return SevCritical, nil
	default:
		return Severity{}, fmt.Errorf("invalid severity: %s", s)
	}
}

// MustNewSeverity creates a Severity or panics
func MustNewSeverity(s string) Severity {
	sev, err := NewSeverity(s)
	if err != nil {
		panic(err)
	}
	return sev
}

// String returns the string representation
func (s Severity) String() string {
	switch s.value {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// Level returns the numeric severity level (for ordering)
func (s Severity) Level() int {
	return int(s.value)
}

// IsHigherThan returns true if this severity is higher than the other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.value > other.value
}

// IsHigherOrEqual returns true if this severity is higher or equal to the other
func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.value >= other.value
}

// Equals checks if two severities are equal
func (s Severity) Equals(other Severity) bool {
	return s.value == other.value
}

// IsProblem reports whether the severity marks the run output as defective.
func (s Severity) IsProblem() bool {
	return s.value >= SeverityError
}

// MarshalText implements encoding.TextMarshaler.
// Used by both the JSON and YAML encoders.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(data []byte) error {
	sev, err := NewSeverity(string(data))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

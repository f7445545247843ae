// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessica-dev/jessica/internal/domain/entities"
)

// ValidationError indicates profile or filter validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%s)", e.Field, e.Message, strings.Join(e.Details, "; "))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ValidateProfile runs the profile invariants and converts a violation
// into a *ValidationError.
func ValidateProfile(p *entities.Profile) error {
	if p == nil {
		return NewValidationError("profile", "profile is nil")
	}
	err := p.Validate()
	if err == nil {
		return nil
	}
	var pe *entities.ProfileError
	if errors.As(err, &pe) {
		return NewValidationError(pe.Field, pe.Message)
	}
	return NewValidationError("profile", err.Error())
}

// NotFoundError indicates a referenced item does not exist.
type NotFoundError struct {
	Kind string // e.g. "profile", "default profile", "job"
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// SpawnError indicates the compose tool could not be launched.
type SpawnError struct {
	Cause   error
	Command string
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Cause)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// NewSpawnError creates a new spawn error.
func NewSpawnError(command string, cause error) *SpawnError {
	return &SpawnError{Command: command, Cause: cause}
}

// BusyError rejects a start request while another job holds the slot.
type BusyError struct {
	ActiveJob string
	State     string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("a compose job is already active: %s (%s)", e.ActiveJob, e.State)
}

// NewBusyError creates a new busy error.
func NewBusyError(activeJob, state string) *BusyError {
	return &BusyError{ActiveJob: activeJob, State: state}
}

// AbortTimeoutError reports that graceful termination did not finish
// within the grace period and the process had to be killed. It is
// carried in a warning event; it never fails the job by itself.
type AbortTimeoutError struct {
	JobID string
	Grace time.Duration
}

func (e *AbortTimeoutError) Error() string {
	return fmt.Sprintf("%s did not exit within %s of the termination request, killed", e.JobID, e.Grace)
}

// NewAbortTimeoutError creates a new abort timeout error.
func NewAbortTimeoutError(jobID string, grace time.Duration) *AbortTimeoutError {
	return &AbortTimeoutError{JobID: jobID, Grace: grace}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}

package entities

import "fmt"

// ProfileError describes a violated profile invariant.
type ProfileError struct {
	Field   string
	Message string
	Index   int // position within a list field, 0 otherwise
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("invalid profile: %s: %s", e.Field, e.Message)
}

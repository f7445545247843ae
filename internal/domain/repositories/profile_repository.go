// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"

	"github.com/jessica-dev/jessica/internal/domain/entities"
)

// ProfileRepository persists named profiles and the optional default marker.
//
// Implementations return *apperrors.ValidationError from Save for profiles
// that fail entities.Profile.Validate and *apperrors.NotFoundError for
// missing names. Writes must be atomic with respect to concurrent reads.
type ProfileRepository interface {
	// Save upserts a profile by name.
	Save(ctx context.Context, profile *entities.Profile) error

	// Load returns a copy of the named profile.
	Load(ctx context.Context, name string) (*entities.Profile, error)

	// Delete removes a profile. Deleting the default profile unsets the default.
	Delete(ctx context.Context, name string) error

	// SetDefault marks an existing profile as the default.
	SetDefault(ctx context.Context, name string) error

	// GetDefault returns the default profile, or nil when none is set.
	GetDefault(ctx context.Context) (*entities.Profile, error)

	// List returns all profiles ordered by name.
	List(ctx context.Context) ([]*entities.Profile, error)
}

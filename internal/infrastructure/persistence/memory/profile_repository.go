package memory

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
)

// Ensure interface compliance
var _ repositories.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository keeps profiles in memory. Profiles are cloned on the
// way in and out so callers never share state with the store.
type ProfileRepository struct {
	profiles    map[string]*entities.Profile
	defaultName string
	mu          sync.RWMutex
}

// NewProfileRepository creates an empty repository.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]*entities.Profile)}
}

// Save upserts a profile by name.
func (r *ProfileRepository) Save(_ context.Context, profile *entities.Profile) error {
	if err := apperrors.ValidateProfile(profile); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.Name] = profile.Clone()
	return nil
}

// Load returns a copy of the named profile.
func (r *ProfileRepository) Load(_ context.Context, name string) (*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	if !ok {
		return nil, apperrors.NewNotFoundError("profile", name)
	}
	return p.Clone(), nil
}

// Delete removes a profile and clears the default if it pointed at it.
func (r *ProfileRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; !ok {
		return apperrors.NewNotFoundError("profile", name)
	}
	delete(r.profiles, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
	return nil
}

// SetDefault marks an existing profile as the default.
func (r *ProfileRepository) SetDefault(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; !ok {
		return apperrors.NewNotFoundError("profile", name)
	}
	r.defaultName = name
	return nil
}

// GetDefault returns the default profile, or nil when none is set.
func (r *ProfileRepository) GetDefault(_ context.Context) (*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultName == "" {
		return nil, nil
	}
	return r.profiles[r.defaultName].Clone(), nil
}

// List returns all profiles ordered by name.
func (r *ProfileRepository) List(_ context.Context) ([]*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

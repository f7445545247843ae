package services

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
)

// DefaultProfileName is the profile created on first start.
const DefaultProfileName = "Default"

// ProfileService is the use-case facade over the profile store.
// It is safe to use while a compose job is running.
type ProfileService struct {
	repo   repositories.ProfileRepository
	logger *slog.Logger
}

// NewProfileService creates a profile service.
func NewProfileService(repo repositories.ProfileRepository, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{repo: repo, logger: logger}
}

// Save validates and upserts profile.
func (s *ProfileService) Save(ctx context.Context, profile *entities.Profile) error {
	if err := apperrors.ValidateProfile(profile); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, profile); err != nil {
		return err
	}
	s.logger.Debug("profile saved", "profile", profile.Name)
	return nil
}

// Load returns the named profile.
func (s *ProfileService) Load(ctx context.Context, name string) (*entities.Profile, error) {
	return s.repo.Load(ctx, name)
}

// Delete removes the named profile.
func (s *ProfileService) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Debug("profile deleted", "profile", name)
	return nil
}

// SetDefault marks the named profile as default.
func (s *ProfileService) SetDefault(ctx context.Context, name string) error {
	return s.repo.SetDefault(ctx, name)
}

// GetDefault returns the default profile or nil.
func (s *ProfileService) GetDefault(ctx context.Context) (*entities.Profile, error) {
	return s.repo.GetDefault(ctx)
}

// List returns all profiles ordered by name.
func (s *ProfileService) List(ctx context.Context) ([]*entities.Profile, error) {
	return s.repo.List(ctx)
}

// Select resolves the profile a job should use: the named one, or the
// default when name is empty. Without a default it returns a
// *apperrors.NotFoundError of kind "default profile" so the caller can
// ask the user to pick one.
func (s *ProfileService) Select(ctx context.Context, name string) (*entities.Profile, error) {
	if name != "" {
		return s.repo.Load(ctx, name)
	}
	p, err := s.repo.GetDefault(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NewNotFoundError("default profile", "")
	}
	return p, nil
}

// Bootstrap creates and marks a "Default" profile when the store is empty.
// It returns true if a profile was created.
func (s *ProfileService) Bootstrap(ctx context.Context, sourceDir string) (bool, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	p := entities.NewProfile(DefaultProfileName, sourceDir)
	if err := s.Save(ctx, p); err != nil {
		return false, err
	}
	if err := s.repo.SetDefault(ctx, p.Name); err != nil {
		return false, err
	}
	s.logger.Info("created default profile", "profile", p.Name, "source", sourceDir)
	return true, nil
}

// IsMissingDefault reports whether err means no default profile is set.
func IsMissingDefault(err error) bool {
	var nf *apperrors.NotFoundError
	return errors.As(err, &nf) && nf.Kind == "default profile"
}

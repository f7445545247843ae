// Package filestore persists profiles as YAML documents on disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
	"github.com/jessica-dev/jessica/internal/infrastructure/validation"
)

const (
	// FormatVersion is written into every profile document.
	FormatVersion = "1.0.0"

	supportedFormats = "^1"
	defaultFileName  = ".default"
	profileExt       = ".yaml"
)

// Ensure interface compliance
var _ repositories.ProfileRepository = (*ProfileRepository)(nil)

type profileDocument struct {
	FormatVersion string            `yaml:"format_version"`
	Profile       *entities.Profile `yaml:"profile"`
}

type defaultPointer struct {
	Profile string `yaml:"profile"`
}

// ProfileRepository stores one <name>.yaml document per profile in a
// directory, plus a .default pointer naming the default profile. Every write
// goes through a temp file and a rename, so readers never observe a
// half-written document.
type ProfileRepository struct {
	logger     *slog.Logger
	validator  *validation.SchemaValidator
	constraint *semver.Constraints
	root       string
	mu         sync.RWMutex
}

// NewProfileRepository opens (and creates if needed) a store in dir.
func NewProfileRepository(dir string, logger *slog.Logger) (*ProfileRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create profile store: %w", err)
	}

	validator, err := validation.NewProfileSchemaValidator()
	if err != nil {
		return nil, err
	}
	constraint, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return nil, fmt.Errorf("invalid format constraint: %w", err)
	}

	return &ProfileRepository{
		root:       dir,
		logger:     logger,
		validator:  validator,
		constraint: constraint,
	}, nil
}

// Root returns the store directory.
func (r *ProfileRepository) Root() string {
	return r.root
}

// Save upserts a profile by name.
func (r *ProfileRepository) Save(_ context.Context, profile *entities.Profile) error {
	if err := apperrors.ValidateProfile(profile); err != nil {
		return err
	}

	data, err := yaml.Marshal(profileDocument{FormatVersion: FormatVersion, Profile: profile})
	if err != nil {
		return fmt.Errorf("failed to encode profile %q: %w", profile.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return writeAtomic(r.profilePath(profile.Name), data)
}

// Load returns the named profile.
func (r *ProfileRepository) Load(_ context.Context, name string) (*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(name)
}

// Delete removes a profile and clears the default if it pointed at it.
func (r *ProfileRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.profilePath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.NewNotFoundError("profile", name)
		}
		return fmt.Errorf("failed to delete profile %q: %w", name, err)
	}

	current, err := r.defaultName()
	if err != nil {
		return err
	}
	if current == name {
		if err := os.Remove(r.defaultPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear default profile: %w", err)
		}
	}
	return nil
}

// SetDefault marks an existing profile as the default.
func (r *ProfileRepository) SetDefault(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.profilePath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.NewNotFoundError("profile", name)
		}
		return fmt.Errorf("failed to check profile %q: %w", name, err)
	}

	data, err := yaml.Marshal(defaultPointer{Profile: name})
	if err != nil {
		return fmt.Errorf("failed to encode default pointer: %w", err)
	}
	return writeAtomic(r.defaultPath(), data)
}

// GetDefault returns the default profile, or nil when none is set.
// A pointer to a profile that no longer exists is treated as unset.
func (r *ProfileRepository) GetDefault(_ context.Context) (*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, err := r.defaultName()
	if err != nil || name == "" {
		return nil, err
	}

	p, err := r.load(name)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			r.logger.Warn("default profile points at a missing profile", "profile", name)
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List returns all readable profiles ordered by name. Unreadable or
// invalid documents are logged and skipped.
func (r *ProfileRepository) List(_ context.Context) ([]*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile store: %w", err)
	}

	out := make([]*entities.Profile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), profileExt) {
			continue
		}
		path := filepath.Join(r.root, entry.Name())
		p, err := r.readDocument(path)
		if err != nil {
			r.logger.Warn("skipping unreadable profile", "file", path, "error", err)
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProfileRepository) load(name string) (*entities.Profile, error) {
	p, err := r.readDocument(r.profilePath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("profile", name)
		}
		return nil, err
	}
	if p.Name != name {
		return nil, apperrors.NewValidationError("name",
			fmt.Sprintf("document for %q declares profile %q", name, p.Name))
	}
	return p, nil
}

func (r *ProfileRepository) readDocument(path string) (*entities.Profile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the store root
	if err != nil {
		return nil, err
	}

	if err := r.validator.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	var doc profileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	version, err := semver.NewVersion(doc.FormatVersion)
	if err != nil {
		return nil, apperrors.NewValidationError("format_version",
			fmt.Sprintf("invalid format version %q", doc.FormatVersion))
	}
	if !r.constraint.Check(version) {
		return nil, apperrors.NewValidationError("format_version",
			fmt.Sprintf("unsupported format version %s (want %s)", version, supportedFormats))
	}

	if err := apperrors.ValidateProfile(doc.Profile); err != nil {
		return nil, err
	}
	return doc.Profile, nil
}

func (r *ProfileRepository) defaultName() (string, error) {
	data, err := os.ReadFile(r.defaultPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read default profile pointer: %w", err)
	}

	var ptr defaultPointer
	if err := yaml.Unmarshal(data, &ptr); err != nil {
		return "", fmt.Errorf("failed to decode default profile pointer: %w", err)
	}
	return ptr.Profile, nil
}

func (r *ProfileRepository) profilePath(name string) string {
	return filepath.Join(r.root, url.PathEscape(name)+profileExt)
}

func (r *ProfileRepository) defaultPath() string {
	return filepath.Join(r.root, defaultFileName)
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

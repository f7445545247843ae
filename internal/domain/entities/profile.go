// Package entities contains domain entities for the compose domain model.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"slices"
	"strings"
)

// Profile is a named, persisted compose configuration.
//
// Invariants Enforced:
// - Name is non-empty and has no surrounding whitespace
// - At least one source directory, none of them blank
// - Sheet names are unique
// - An explicit sheet selection is not combined with JSON-only mode,
//   which always targets the entire tileset
type Profile struct {
	Name          string       `yaml:"name" json:"name"`
	SourceDirs    []string     `yaml:"source_dirs" json:"source_dirs"`
	OutputDir     string       `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	Sheets        []string     `yaml:"sheets,omitempty" json:"sheets,omitempty"`
	FormatterPath string       `yaml:"formatter_path,omitempty" json:"formatter_path,omitempty"`
	Flags         ComposeFlags `yaml:"flags" json:"flags"`
}

// ComposeFlags are the boolean switches passed to the compose tool.
type ComposeFlags struct {
	UseAll          bool `yaml:"use_all" json:"use_all"`
	OnlyJSON        bool `yaml:"only_json" json:"only_json"`
	FormatJSON      bool `yaml:"format_json" json:"format_json"`
	FailFast        bool `yaml:"fail_fast" json:"fail_fast"`
	ObsoleteFillers bool `yaml:"obsolete_fillers" json:"obsolete_fillers"`
	PaletteCopies   bool `yaml:"palette_copies" json:"palette_copies"`
	Palette         bool `yaml:"palette" json:"palette"`
}

// NewProfile returns a profile with the defaults used for freshly created
// profiles: every unreferenced sprite is included.
func NewProfile(name string, sourceDirs ...string) *Profile {
	return &Profile{
		Name:       name,
		SourceDirs: sourceDirs,
		Flags:      ComposeFlags{UseAll: true},
	}
}

// ===== PROFILE AGGREGATE ROOT METHODS =====

// Validate checks the profile invariants.
// Returns a *ProfileError describing the first violation.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return &ProfileError{Field: "name", Message: "profile name cannot be empty"}
	}
	if strings.TrimSpace(p.Name) != p.Name {
		return &ProfileError{Field: "name", Message: "profile name cannot start or end with whitespace"}
	}
	if len(p.SourceDirs) == 0 {
		return &ProfileError{Field: "source_dirs", Message: "at least one source directory is required"}
	}
	for i, dir := range p.SourceDirs {
		if strings.TrimSpace(dir) == "" {
			return &ProfileError{Field: "source_dirs", Message: "source directory cannot be blank", Index: i}
		}
	}

	seen := make(map[string]bool, len(p.Sheets))
	for i, sheet := range p.Sheets {
		if strings.TrimSpace(sheet) == "" {
			return &ProfileError{Field: "sheets", Message: "sheet name cannot be blank", Index: i}
		}
		if seen[sheet] {
			return &ProfileError{Field: "sheets", Message: "duplicate sheet " + sheet, Index: i}
		}
		seen[sheet] = true
	}

	if len(p.Sheets) > 0 && p.Flags.OnlyJSON {
		return &ProfileError{
			Field:   "flags.only_json",
			Message: "JSON-only mode covers the entire tileset and cannot be combined with a sheet selection",
		}
	}

	return nil
}

// Clone returns a deep copy. The controller works on clones so that
// later edits to a stored profile never reach a running job. Empty lists
// come back nil, the form a stored profile loads with.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.SourceDirs = cloneList(p.SourceDirs)
	c.Sheets = cloneList(p.Sheets)
	return &c
}

func cloneList(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// SelectsAllSheets reports whether no explicit sheet selection was made.
func (p *Profile) SelectsAllSheets() bool {
	return len(p.Sheets) == 0
}

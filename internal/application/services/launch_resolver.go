// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// ToolSettings describe how the external compose tool is invoked.
type ToolSettings struct {
	Command []string // argv prefix, e.g. ["python3", "compose.py"]
	WorkDir string
	Env     []string
}

// LaunchResolver turns a profile snapshot into a LaunchConfig.
type LaunchResolver struct {
	files   ports.FileChecker
	catalog ports.SheetCatalog
	logger  *slog.Logger
	tool    ToolSettings
}

// NewLaunchResolver creates a resolver. catalog may be nil, in which case
// sheet names are not checked against the tileset.
func NewLaunchResolver(tool ToolSettings, files ports.FileChecker, catalog ports.SheetCatalog, logger *slog.Logger) *LaunchResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LaunchResolver{
		tool:    tool,
		files:   files,
		catalog: catalog,
		logger:  logger,
	}
}

// Resolve derives the launch configuration for profile.
//
// The first source directory that exists is used. An empty sheet
// selection targets the whole tileset. The external formatter is chosen
// only when its path is an existing file; otherwise the tool's built-in
// formatter is used.
func (r *LaunchResolver) Resolve(ctx context.Context, profile *entities.Profile) (*entities.LaunchConfig, error) {
	if err := apperrors.ValidateProfile(profile); err != nil {
		return nil, err
	}
	if len(r.tool.Command) == 0 {
		return nil, apperrors.NewConfigurationError("tool", "compose tool command is not configured", nil)
	}

	source, err := r.resolveSource(profile.SourceDirs)
	if err != nil {
		return nil, err
	}

	output := profile.OutputDir
	if output != "" {
		if output, err = filepath.Abs(output); err != nil {
			return nil, apperrors.NewValidationError("output_dir", err.Error())
		}
	}

	if err := r.checkSheets(ctx, source, profile.Sheets); err != nil {
		return nil, err
	}

	threshold := values.SevCritical
	if profile.Flags.FailFast {
		threshold = values.SevWarning
	}

	cfg := entities.NewLaunchConfig(entities.LaunchSpec{
		ProfileName:       profile.Name,
		Command:           r.tool.Command,
		WorkDir:           r.tool.WorkDir,
		Env:               r.tool.Env,
		SourceDir:         source,
		OutputDir:         output,
		Sheets:            profile.Sheets,
		Flags:             profile.Flags,
		Formatter:         r.resolveFormatter(profile.FormatterPath),
		FailFastThreshold: threshold,
	})

	r.logger.Debug("resolved launch config",
		"profile", profile.Name,
		"source", cfg.SourceDir(),
		"output", cfg.OutputDir(),
		"all_sheets", cfg.TargetsAllSheets(),
		"formatter", cfg.Formatter().String(),
		"fail_fast_threshold", cfg.FailFastThreshold().String())

	return cfg, nil
}

func (r *LaunchResolver) resolveSource(dirs []string) (string, error) {
	for _, dir := range dirs {
		if !r.files.IsDir(dir) {
			r.logger.Debug("source directory not available", "dir", dir)
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", apperrors.NewValidationError("source_dirs", err.Error())
		}
		return abs, nil
	}
	return "", apperrors.NewValidationError("source_dirs", "none of the source directories exist", dirs...)
}

func (r *LaunchResolver) resolveFormatter(path string) entities.FormatterChoice {
	if path == "" {
		return entities.FormatterChoice{}
	}
	if !r.files.IsFile(path) {
		r.logger.Debug("external formatter not found, using built-in", "path", path)
		return entities.FormatterChoice{}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return entities.FormatterChoice{External: true, Path: path}
}

func (r *LaunchResolver) checkSheets(ctx context.Context, source string, sheets []string) error {
	if r.catalog == nil || len(sheets) == 0 {
		return nil
	}
	known, err := r.catalog.Sheets(ctx, source)
	if err != nil {
		// the tool reports unreadable tilesets itself
		r.logger.Debug("cannot read tileset sheets, skipping sheet check", "source", source, "error", err)
		return nil
	}

	var unknown []string
	for _, s := range sheets {
		if !slices.Contains(known, s) {
			unknown = append(unknown, s)
		}
	}
	if len(unknown) > 0 {
		return apperrors.NewValidationError("sheets",
			fmt.Sprintf("%d sheet(s) not defined by the tileset in %s", len(unknown), source), unknown...)
	}
	return nil
}

// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/application/services"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
	domainservices "github.com/jessica-dev/jessica/internal/domain/services"
	"github.com/jessica-dev/jessica/internal/infrastructure/output"
	"github.com/jessica-dev/jessica/internal/infrastructure/persistence/filestore"
	"github.com/jessica-dev/jessica/internal/infrastructure/persistence/memory"
	"github.com/jessica-dev/jessica/internal/infrastructure/process"
	"github.com/jessica-dev/jessica/internal/infrastructure/system"
	"github.com/jessica-dev/jessica/internal/infrastructure/tileset"
)

// Container holds all application dependencies.
type Container struct {
	profileService *services.ProfileService
	controller     *services.JobController
	inspector      *tileset.Inspector
	formatters     ports.OutputFormatterFactory
	systemCfg      *system.Config
	logger         *slog.Logger
}

// Options configure the container. Non-zero fields override the system
// config file.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	ProfilesDir      string
	GracePeriod      time.Duration
	// InMemoryProfiles keeps profiles in memory instead of ProfilesDir.
	InMemoryProfiles bool
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger

	configPath := opts.SystemConfigPath
	if configPath == "" {
		p, err := system.DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	systemCfg, err := system.NewConfigLoader().Load(configPath)
	if err != nil {
		return nil, err
	}
	if opts.ProfilesDir != "" {
		systemCfg.ProfilesDir = opts.ProfilesDir
	}
	if opts.GracePeriod > 0 {
		systemCfg.Abort.GracePeriod = opts.GracePeriod.String()
	}

	grace, err := systemCfg.GracePeriodDuration()
	if err != nil {
		return nil, err
	}
	userRules, err := systemCfg.CompileRules()
	if err != nil {
		return nil, err
	}

	var profiles repositories.ProfileRepository
	if opts.InMemoryProfiles {
		profiles = memory.NewProfileRepository()
	} else {
		store, err := filestore.NewProfileRepository(systemCfg.ProfilesDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open profile store: %w", err)
		}
		profiles = store
	}

	inspector, err := tileset.NewInspector(systemCfg.Tileset.CacheSize, logger)
	if err != nil {
		return nil, err
	}

	// User rules run before the built-in table.
	classifier := domainservices.NewMessageClassifier(userRules...)

	resolver := services.NewLaunchResolver(
		services.ToolSettings{
			Command: systemCfg.Tool.Command,
			WorkDir: systemCfg.Tool.WorkDir,
			Env:     systemCfg.Tool.EnvList(),
		},
		process.FileChecker{},
		inspector,
		logger,
	)

	controller := services.NewJobController(
		resolver,
		process.NewRunner(logger),
		classifier,
		memory.NewJobHistoryRepository(),
		services.ControllerOptions{
			Logger:      logger,
			GracePeriod: grace,
			EventBuffer: systemCfg.Events.Buffer,
		},
	)

	logger.Debug("container ready",
		"config", configPath,
		"profiles_dir", systemCfg.ProfilesDir,
		"grace_period", grace,
		"user_rules", len(userRules))

	return &Container{
		profileService: services.NewProfileService(profiles, logger),
		controller:     controller,
		inspector:      inspector,
		formatters:     output.NewFormatterFactory(),
		systemCfg:      systemCfg,
		logger:         logger,
	}, nil
}

// ProfileService returns the profile use cases.
func (c *Container) ProfileService() *services.ProfileService {
	return c.profileService
}

// JobController returns the compose job controller.
func (c *Container) JobController() *services.JobController {
	return c.controller
}

// TilesetInspector returns the tileset metadata reader.
func (c *Container) TilesetInspector() *tileset.Inspector {
	return c.inspector
}

// OutputFormatters returns the report formatter factory.
func (c *Container) OutputFormatters() ports.OutputFormatterFactory {
	return c.formatters
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

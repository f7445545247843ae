package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jessica-dev/jessica/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// Flag and JESSICA_* environment values override the config file.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		c, err := container.New(container.Options{
			SystemConfigPath: viper.GetString("config"),
			ProfilesDir:      viper.GetString("profiles_dir"),
			GracePeriod:      viper.GetDuration("grace_period"),
			Logger:           logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx := &CommandContext{
			Container: c,
			Logger:    logger,
			Context:   cmd.Context(),
		}
		if ctx.Context == nil {
			ctx.Context = context.Background()
		}

		return handler(ctx, cmd, args)
	}
}

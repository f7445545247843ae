package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "jessica",
	Short: "Tileset composer front end",
	Long: `Jessica drives the tileset compose tool from saved profiles. It launches
the tool, classifies every line it prints, aborts on critical problems and
reports a summary of what went wrong.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// exitError ends the process with a specific exit code.
type exitError struct {
	msg  string
	code int
}

func (e *exitError) Error() string { return e.msg }

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jessica/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.String("profiles-dir", "", "directory holding saved profiles (default is $HOME/.jessica/profiles)")
	flags.Duration("grace-period", 0, "time an aborted compose tool gets to exit before it is killed")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("profiles_dir", flags.Lookup("profiles-dir"))
	_ = viper.BindPFlag("grace_period", flags.Lookup("grace-period"))
}

// initConfig loads .env and binds JESSICA_* environment variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	viper.SetEnvPrefix("JESSICA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.Set("config", cfgFile)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

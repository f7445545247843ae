package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// OutputOptions contains the report flags shared by commands that print results.
type OutputOptions struct {
	Format  string
	OutFile string
	NoColor bool
}

// DefaultOutputOptions returns sensible defaults.
func DefaultOutputOptions() OutputOptions {
	return OutputOptions{Format: "table"}
}

// RegisterFlags adds the output flags to a cobra command.
func (opts *OutputOptions) RegisterFlags(cmd *cobra.Command, formats ...string) {
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "",
		"Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ValidateFlags checks the format against the supported list.
func (opts *OutputOptions) ValidateFlags(supported []string) error {
	if !slices.Contains(supported, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", opts.Format, strings.Join(supported, ", "))
	}
	return nil
}

// Color reports whether table output should use ANSI colors.
func (opts *OutputOptions) Color() bool {
	return !opts.NoColor && opts.OutFile == "" && os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
}

// Open returns the report writer and a function that closes it.
func (opts *OutputOptions) Open() (io.Writer, func() error, error) {
	if opts.OutFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	//nolint:gosec // G304: user-chosen output path
	file, err := os.Create(opts.OutFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	slog.Info("writing output", "file", opts.OutFile, "format", opts.Format)
	return file, file.Close, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

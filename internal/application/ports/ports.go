// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/jessica-dev/jessica/internal/domain/execution"
)

// ProcessSpec describes one invocation of an external program.
type ProcessSpec struct {
	Argv []string
	Dir  string
	Env  []string // appended to the current environment
}

// ProcessRunner launches external processes.
type ProcessRunner interface {
	// Start spawns the process. The context bounds the spawn only; the
	// process lifetime is controlled through Process.
	Start(ctx context.Context, spec ProcessSpec) (Process, error)
}

// Process is a running external program with a combined output stream.
type Process interface {
	// PID returns the operating system process id.
	PID() int

	// Output is the combined stdout and stderr stream. It returns io.EOF
	// once every writer, including inherited ones in child processes, has
	// closed its end.
	Output() io.Reader

	// Wait blocks until the process exits and returns its exit code.
	// A non-zero exit is not an error; err reports failures to wait.
	Wait() (exitCode int, err error)

	// Terminate asks the process to exit (SIGTERM where supported).
	Terminate() error

	// Kill forcibly ends the process.
	Kill() error
}

// SheetCatalog lists the tilesheets a tileset source directory defines.
type SheetCatalog interface {
	Sheets(ctx context.Context, sourceDir string) ([]string, error)
}

// FileChecker answers existence questions about paths.
type FileChecker interface {
	IsDir(path string) bool
	IsFile(path string) bool
}

// OutputFormatter formats finished job records.
type OutputFormatter interface {
	Format(record *execution.JobRecord) error
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, w io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}

// FormatterOptions tune the output formatters.
type FormatterOptions struct {
	// ToolVersion is reported in SARIF output
	ToolVersion string
	Indent      bool
	Color       bool
}

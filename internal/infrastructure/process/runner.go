// Package process runs the external composer as an operating system process.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/jessica-dev/jessica/internal/application/ports"
)

// Ensure interface compliance
var _ ports.ProcessRunner = (*Runner)(nil)

// Runner starts processes with stdout and stderr merged into one pipe.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Start spawns spec.Argv. The context only bounds the spawn; the running
// process is not tied to it.
func (r *Runner) Start(ctx context.Context, spec ports.ProcessSpec) (ports.Process, error) {
	if len(spec.Argv) == 0 {
		return nil, errors.New("empty command")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:gosec // G204: argv comes from the user's own configuration
	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	configureProcAttr(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	_ = pw.Close()

	r.logger.Debug("process started", "pid", cmd.Process.Pid, "argv", spec.Argv, "dir", spec.Dir)
	return &osProcess{cmd: cmd, output: &closeOnEOF{f: pr}}, nil
}

type osProcess struct {
	cmd    *exec.Cmd
	output *closeOnEOF

	waitOnce sync.Once
	exitCode int
	waitErr  error
}

func (p *osProcess) PID() int { return p.cmd.Process.Pid }

func (p *osProcess) Output() io.Reader { return p.output }

// Wait returns the exit code. A process ended by a signal reports -1.
func (p *osProcess) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			p.exitCode = 0
		case errors.As(err, &exitErr):
			p.exitCode = exitErr.ExitCode()
		default:
			p.exitCode = -1
			p.waitErr = err
		}
	})
	return p.exitCode, p.waitErr
}

func (p *osProcess) Terminate() error { return terminate(p.cmd.Process) }

func (p *osProcess) Kill() error { return kill(p.cmd.Process) }

// closeOnEOF releases the read end of the pipe once it is drained.
type closeOnEOF struct {
	f    *os.File
	once sync.Once
}

func (c *closeOnEOF) Read(b []byte) (int, error) {
	n, err := c.f.Read(b)
	if err != nil {
		c.once.Do(func() { _ = c.f.Close() })
		if errors.Is(err, os.ErrClosed) {
			err = io.EOF
		}
	}
	return n, err
}

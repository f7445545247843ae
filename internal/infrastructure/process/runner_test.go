//go:build !windows

package process

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startScript(t *testing.T, script string, env ...string) ports.Process {
	t.Helper()
	p, err := NewRunner(nil).Start(context.Background(), ports.ProcessSpec{
		Argv: []string{"/bin/sh", "-c", script},
		Env:  env,
	})
	require.NoError(t, err)
	return p
}

func readLines(t *testing.T, r io.Reader) []string {
	t.Helper()
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestRunner_MergesStdoutAndStderr(t *testing.T) {
	p := startScript(t, `echo out; echo err 1>&2; echo again`)

	lines := readLines(t, p.Output())
	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"out", "err", "again"}, lines)
	assert.Positive(t, p.PID())
}

func TestRunner_ExitCode(t *testing.T) {
	p := startScript(t, `echo failing; exit 3`)

	readLines(t, p.Output())
	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunner_EnvAndDir(t *testing.T) {
	dir := t.TempDir()
	p, err := NewRunner(nil).Start(context.Background(), ports.ProcessSpec{
		Argv: []string{"/bin/sh", "-c", `echo "$TILESET"; pwd`},
		Dir:  dir,
		Env:  []string{"TILESET=UltiCa"},
	})
	require.NoError(t, err)

	lines := readLines(t, p.Output())
	_, err = p.Wait()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "UltiCa", lines[0])

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(lines[1])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunner_MissingProgram(t *testing.T) {
	_, err := NewRunner(nil).Start(context.Background(), ports.ProcessSpec{
		Argv: []string{filepath.Join(t.TempDir(), "no-such-composer")},
	})
	assert.Error(t, err)
}

func TestRunner_EmptyCommand(t *testing.T) {
	_, err := NewRunner(nil).Start(context.Background(), ports.ProcessSpec{})
	assert.Error(t, err)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil).Start(ctx, ports.ProcessSpec{Argv: []string{"/bin/true"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_TerminateStopsProcessGroup(t *testing.T) {
	// The child sleeps in a grandchild; both must go away on terminate.
	p := startScript(t, `echo ready; sleep 30 & wait`)

	r := bufio.NewReader(p.Output())
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ready\n", line)

	require.NoError(t, p.Terminate())

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, r)
		_, _ = p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		_ = p.Kill()
		t.Fatal("process group survived terminate")
	}
}

func TestRunner_KillIgnoresTerm(t *testing.T) {
	p := startScript(t, `trap '' TERM; echo ready; while :; do sleep 1; done`)

	r := bufio.NewReader(p.Output())
	_, err := r.ReadString('\n')
	require.NoError(t, err)

	require.NoError(t, p.Terminate())
	require.NoError(t, p.Kill())

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, -1, code)

	// Signalling an exited group is not an error.
	assert.NoError(t, p.Kill())
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "formatter")
	require.NoError(t, os.WriteFile(file, []byte("#!/bin/sh\n"), 0o600))

	fc := FileChecker{}
	assert.True(t, fc.IsDir(dir))
	assert.False(t, fc.IsDir(file))
	assert.True(t, fc.IsFile(file))
	assert.False(t, fc.IsFile(dir))
	assert.False(t, fc.IsFile(filepath.Join(dir, "missing")))
}

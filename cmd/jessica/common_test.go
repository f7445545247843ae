package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputOptions_ValidateFlags(t *testing.T) {
	supported := []string{"table", "json", "sarif"}

	tests := []struct {
		format  string
		wantErr bool
	}{
		{"table", false},
		{"sarif", false},
		{"xml", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			opts := OutputOptions{Format: tt.format}
			err := opts.ValidateFlags(supported)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid format")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOutputOptions_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	opts := OutputOptions{Format: "json", OutFile: path}

	w, closeFn, err := opts.Open()
	require.NoError(t, err)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	assert.False(t, opts.Color(), "file output is never colored")
}

func TestOutputOptions_OpenStdout(t *testing.T) {
	opts := DefaultOutputOptions()
	w, closeFn, err := opts.Open()
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
	assert.NoError(t, closeFn())
}

func TestProfileFlags(t *testing.T) {
	var flags profileFlags
	cmd := &cobra.Command{Use: "save"}
	flags.register(cmd)

	require.NoError(t, cmd.ParseFlags([]string{
		"-s", "/gfx/a", "--source", "/gfx/b",
		"--sheet", "giant.png",
		"--fail-fast", "--use-all=false",
		"--output-dir", "/out",
	}))

	p := flags.profile("UltiCa")
	assert.Equal(t, "UltiCa", p.Name)
	assert.Equal(t, []string{"/gfx/a", "/gfx/b"}, p.SourceDirs)
	assert.Equal(t, []string{"giant.png"}, p.Sheets)
	assert.Equal(t, "/out", p.OutputDir)
	assert.Equal(t, entities.ComposeFlags{FailFast: true}, p.Flags)
	assert.False(t, flags.SetDefault)
}

func TestFlagSummary(t *testing.T) {
	assert.Equal(t, "-", flagSummary(entities.ComposeFlags{}))
	assert.Equal(t, "use_all,fail_fast", flagSummary(entities.ComposeFlags{UseAll: true, FailFast: true}))
}

func TestFirstDir(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, firstDir([]string{filepath.Join(dir, "missing"), dir}))
	assert.Empty(t, firstDir([]string{filepath.Join(dir, "missing")}))
}

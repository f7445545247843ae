package entities

import (
	"path/filepath"
	"slices"

	"github.com/jessica-dev/jessica/internal/domain/values"
)

// DefaultOutputDirName is appended to the source directory when a profile
// does not name an output directory.
const DefaultOutputDirName = "default_compose_output"

// FormatterChoice selects how the tool pretty-prints generated JSON.
type FormatterChoice struct {
	// Path of the external formatter executable; empty when built-in
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// External is true when Path exists and is used
	External bool `json:"external" yaml:"external"`
}

// String returns a short description for logs.
func (f FormatterChoice) String() string {
	if f.External {
		return "external:" + f.Path
	}
	return "builtin"
}

// LaunchSpec carries the inputs to NewLaunchConfig.
type LaunchSpec struct {
	ProfileName       string
	Command           []string
	WorkDir           string
	Env               []string
	SourceDir         string
	OutputDir         string
	Sheets            []string
	Flags             ComposeFlags
	Formatter         FormatterChoice
	FailFastThreshold values.Severity
}

// LaunchConfig is the resolved, immutable set of parameters for one
// compose run. All accessors return copies.
type LaunchConfig struct {
	profileName       string
	command           []string
	workDir           string
	env               []string
	sourceDir         string
	outputDir         string
	sheets            []string
	flags             ComposeFlags
	formatter         FormatterChoice
	failFastThreshold values.Severity
}

// NewLaunchConfig freezes spec into a LaunchConfig. Paths are cleaned and
// an empty output directory becomes <source>/default_compose_output.
func NewLaunchConfig(spec LaunchSpec) *LaunchConfig {
	source := filepath.Clean(spec.SourceDir)
	output := spec.OutputDir
	if output == "" {
		output = filepath.Join(source, DefaultOutputDirName)
	}

	var sheets []string
	if len(spec.Sheets) > 0 && !spec.Flags.OnlyJSON {
		sheets = slices.Clone(spec.Sheets)
	}

	return &LaunchConfig{
		profileName:       spec.ProfileName,
		command:           slices.Clone(spec.Command),
		workDir:           spec.WorkDir,
		env:               slices.Clone(spec.Env),
		sourceDir:         source,
		outputDir:         filepath.Clean(output),
		sheets:            sheets,
		flags:             spec.Flags,
		formatter:         spec.Formatter,
		failFastThreshold: spec.FailFastThreshold,
	}
}

func (c *LaunchConfig) ProfileName() string { return c.profileName }
func (c *LaunchConfig) Command() []string { return slices.Clone(c.command) }
func (c *LaunchConfig) WorkDir() string { return c.workDir }
func (c *LaunchConfig) Env() []string { return slices.Clone(c.env) }
func (c *LaunchConfig) SourceDir() string { return c.sourceDir }
func (c *LaunchConfig) OutputDir() string { return c.outputDir }
func (c *LaunchConfig) Sheets() []string { return slices.Clone(c.sheets) }
func (c *LaunchConfig) Flags() ComposeFlags { return c.flags }
func (c *LaunchConfig) Formatter() FormatterChoice { return c.formatter }
func (c *LaunchConfig) FailFastThreshold() values.Severity { return c.failFastThreshold }

// TargetsAllSheets is true when no per-sheet targeting is requested.
func (c *LaunchConfig) TargetsAllSheets() bool {
	return len(c.sheets) == 0
}

// Args builds the tool arguments that follow the command prefix:
//
//	[--use-all] [--only-json] [--format-json [--formatter PATH]]
//	[--obsolete-fillers] [--palette] [--palette-copies]
//	[--sheet NAME]... SOURCE OUTPUT
//
// Fail-fast is enforced by the controller and is not forwarded.
func (c *LaunchConfig) Args() []string {
	var args []string
	if c.flags.UseAll {
		args = append(args, "--use-all")
	}
	if c.flags.OnlyJSON {
		args = append(args, "--only-json")
	}
	if c.flags.FormatJSON {
		args = append(args, "--format-json")
		if c.formatter.External {
			args = append(args, "--formatter", c.formatter.Path)
		}
	}
	if c.flags.ObsoleteFillers {
		args = append(args, "--obsolete-fillers")
	}
	if c.flags.Palette {
		args = append(args, "--palette")
	}
	if c.flags.PaletteCopies {
		args = append(args, "--palette-copies")
	}
	for _, sheet := range c.sheets {
		args = append(args, "--sheet", sheet)
	}
	return append(args, c.sourceDir, c.outputDir)
}

// Argv is the full command line: command prefix followed by Args.
func (c *LaunchConfig) Argv() []string {
	return append(c.Command(), c.Args()...)
}

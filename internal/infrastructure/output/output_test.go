package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abortedRecord is a fail-fast abort after an unreadable JSON file.
func abortedRecord() *execution.JobRecord {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []entities.LogMessage{
		{Seq: 1, Raw: "Info: starting compose", Severity: values.SevInfo, Kind: values.KindProgress},
		{Seq: 2, Raw: "Warning: Sprite filename foo.png was not used in any tiles.png 32x32 entries.", Severity: values.SevWarning, Kind: values.KindWarnSpriteUnref},
		{Seq: 3, Raw: "Error: boat.png is 30x32, but tiles.png sheet sprites have to be 32x32.", Severity: values.SevError, Kind: values.KindErrSpriteSize},
		{Seq: 4, Raw: "Error loading pngs_tiles_32x32/boat.json. Auto-Aborting...", Severity: values.SevCritical, Kind: values.KindCritLoadingJSON, Note: "fix the JSON file and compose again"},
		{Seq: 5, Raw: "    json.decoder.JSONDecodeError: Expecting value", Severity: values.SevCritical, Kind: values.KindCritLoadingJSON, Continuation: true},
	}
	record := execution.NewJobRecord(execution.JobSummary{
		JobID:       3,
		RunID:       values.MustParseRunID("3f8a1c2e-4b5d-4e6f-8a9b-0c1d2e3f4a5b"),
		Profile:     "UltiCa",
		Outcome:     values.StateAborted,
		AbortReason: values.AbortFailFast,
		ExitCode:    -1,
		StartedAt:   start,
		Argv:        []string{"python3", "compose.py", "--use-all", "/gfx/UltiCa", "/out"},
		Suggestions: []string{"1 sprite was not referenced; enable use_all to include it."},
	}, messages)
	record.Finalize(start.Add(1500 * time.Millisecond))
	return record
}

func successRecord() *execution.JobRecord {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	record := execution.NewJobRecord(execution.JobSummary{
		JobID:     1,
		RunID:     values.NewRunID(),
		Profile:   "MSX",
		Outcome:   values.StateSucceeded,
		ExitCode:  0,
		StartedAt: start,
	}, []entities.LogMessage{
		{Seq: 1, Raw: "Composing done.", Severity: values.SevInfo, Kind: values.KindFinished},
	})
	record.Finalize(start.Add(time.Second))
	return record
}

func TestFormatterFactory_Create(t *testing.T) {
	factory := NewFormatterFactory()
	buf := &bytes.Buffer{}

	tests := []struct {
		name        string
		format      string
		options     ports.FormatterOptions
		wantErr     bool
		wantType    interface{}
		errContains string
	}{
		{name: "table format", format: "table", wantType: &TableFormatter{}},
		{name: "json format", format: "json", options: ports.FormatterOptions{Indent: true}, wantType: &JSONFormatter{}},
		{name: "yaml format", format: "yaml", wantType: &YAMLFormatter{}},
		{name: "junit format", format: "junit", wantType: &JUnitFormatter{}},
		{name: "sarif format", format: "sarif", options: ports.FormatterOptions{ToolVersion: "1.0.0"}, wantType: &SARIFFormatter{}},
		{name: "unknown format", format: "html", wantErr: true, errContains: "unknown format: html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := factory.Create(tt.format, buf, tt.options)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, formatter)
		})
	}
}

func TestFormatterFactory_SupportedFormats(t *testing.T) {
	formats := NewFormatterFactory().SupportedFormats()
	assert.ElementsMatch(t, []string{"table", "json", "yaml", "junit", "sarif"}, formats)
}

func TestFormatterFactory_TableColor(t *testing.T) {
	f, err := NewFormatterFactory().Create("table", &bytes.Buffer{}, ports.FormatterOptions{Color: false})
	require.NoError(t, err)
	assert.False(t, f.(*TableFormatter).EnableColor)
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.Format(abortedRecord()))
	out := buf.String()

	assert.Contains(t, out, "Profile:  UltiCa")
	assert.Contains(t, out, "Job:      job-3 (run 3f8a1c2e-4b5d-4e6f-8a9b-0c1d2e3f4a5b)")
	assert.Contains(t, out, "Duration: 1.5s")
	assert.Contains(t, out, "Command:  python3 compose.py --use-all /gfx/UltiCa /out")
	assert.Contains(t, out, "     4 CRITICAL Error loading pngs_tiles_32x32/boat.json. Auto-Aborting...")
	assert.Contains(t, out, "fix the JSON file and compose again")
	assert.Contains(t, out, "json.decoder.JSONDecodeError")
	assert.NotContains(t, out, "starting compose", "info lines are left to the full log formats")
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "Outcome:   ⊘ ABORTED")
	assert.Contains(t, out, "Aborted:   fail_fast")
	assert.NotContains(t, out, "Exit code:", "killed processes have no exit code to report")
	assert.Contains(t, out, "Critical: 1")
	assert.NotContains(t, out, "\033[")
}

func TestTableFormatter_Clean(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)

	require.NoError(t, f.Format(successRecord()))
	out := buf.String()

	assert.Contains(t, out, "No warnings or errors reported.")
	assert.Contains(t, out, "Exit code: 0")
	assert.Contains(t, out, colorGreen+"SUCCEEDED"+colorReset)
	assert.NotContains(t, out, "Suggestions:")
}

func TestJSONFormatter_Format(t *testing.T) {
	for _, indent := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, NewJSONFormatter(&buf, indent).Format(abortedRecord()))

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

		summary := got["summary"].(map[string]interface{})
		assert.Equal(t, "aborted", summary["outcome"])
		assert.Equal(t, "fail_fast", summary["abort_reason"])
		assert.Equal(t, "3f8a1c2e-4b5d-4e6f-8a9b-0c1d2e3f4a5b", summary["run_id"])

		messages := got["messages"].([]interface{})
		require.Len(t, messages, 5)
		assert.Equal(t, "critical", messages[3].(map[string]interface{})["severity"])
		assert.Equal(t, indent, strings.Contains(buf.String(), "\n  "))
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(abortedRecord()))

	var got struct {
		Summary struct {
			Profile string `yaml:"profile"`
			Outcome string `yaml:"outcome"`
			Counts  struct {
				Critical int `yaml:"critical"`
				Warning  int `yaml:"warning"`
			} `yaml:"counts"`
		} `yaml:"summary"`
		Messages []struct {
			Severity string `yaml:"severity"`
			Raw      string `yaml:"raw"`
		} `yaml:"messages"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "UltiCa", got.Summary.Profile)
	assert.Equal(t, "aborted", got.Summary.Outcome)
	assert.Equal(t, 1, got.Summary.Counts.Critical)
	assert.Equal(t, 1, got.Summary.Counts.Warning)
	require.Len(t, got.Messages, 5)
	assert.Equal(t, "warning", got.Messages[1].Severity)
}

func TestJUnitFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJUnitFormatter(&buf).Format(abortedRecord()))
	assert.True(t, strings.HasPrefix(buf.String(), xml.Header))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	assert.Equal(t, "UltiCa", suite.Name)
	// compose case + warning + error + critical; the continuation is folded in
	assert.Equal(t, 4, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 2, suite.Errors)

	byName := make(map[string]JUnitTestCase)
	for _, c := range suite.TestCases {
		byName[c.Name] = c
	}
	require.NotNil(t, byName["compose"].Error)
	require.NotNil(t, byName["line 3"].Failure)
	assert.Equal(t, "err_sprite_size", byName["line 3"].ClassName)
	require.NotNil(t, byName["line 4"].Error)
	assert.Contains(t, byName["line 4"].Error.Content, "JSONDecodeError")
	assert.Contains(t, byName["line 2"].SystemOut, "was not used")
}

func TestJUnitFormatter_Success(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJUnitFormatter(&buf).Format(successRecord()))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, 1, suites.Tests)
	assert.Zero(t, suites.Failures)
	assert.Zero(t, suites.Errors)
}

// Package output renders finished compose job records for humans and tools.
package output

import (
	"fmt"
	"io"

	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

const (
	toolName = "jessica"
	toolURI  = "https://github.com/jessica-dev/jessica"
)

// SARIFFormatter formats job records as SARIF 2.1.0 JSON. Message kinds
// become rules and every counted warning, error or critical message
// becomes a result.
type SARIFFormatter struct {
	writer      io.Writer
	toolVersion string
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer, toolVersion string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:      writer,
		toolVersion: toolVersion,
	}
}

// Format writes the job record as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(record *execution.JobRecord) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	if f.toolVersion != "" {
		run.Tool.Driver.Version = ptrString(f.toolVersion)
	}

	newSARIFMapper(record).mapToRun(run)
	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}

func ptrBool(b bool) *bool {
	return &b
}

package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/jessica-dev/jessica/internal/domain/execution"
)

// YAMLFormatter formats job records as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the job record as YAML.
func (f *YAMLFormatter) Format(record *execution.JobRecord) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(record); err != nil {
		return err
	}

	return encoder.Close()
}

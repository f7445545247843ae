package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// JUnitFormatter formats job records as JUnit XML so CI systems can show
// compose problems as test failures.
//
// The suite holds one "compose" case for the process itself plus one case
// per counted warning, error or critical message.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{writer: w}
}

type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

// Format writes the job record as JUnit XML.
func (f *JUnitFormatter) Format(record *execution.JobRecord) error {
	s := record.Summary
	suite := JUnitTestSuite{
		Name: s.Profile,
		Time: s.Duration.Seconds(),
	}

	suite.TestCases = append(suite.TestCases, processCase(s))

	for i, m := range record.Messages {
		if !m.Counted() || !m.Severity.IsHigherOrEqual(values.SevWarning) {
			continue
		}
		c := JUnitTestCase{
			Name:      fmt.Sprintf("line %d", m.Seq),
			ClassName: ruleID(m.Kind, m.Severity),
		}
		detail := strings.Join(continuationsOf(record, i), "\n")
		switch {
		case m.Severity.Equals(values.SevCritical):
			c.Error = &JUnitError{Message: m.Raw, Content: withNote(m.Note, detail)}
		case m.Severity.Equals(values.SevError):
			c.Failure = &JUnitFailure{Message: m.Raw, Content: withNote(m.Note, detail)}
		default:
			c.SystemOut = withNote(m.Note, m.Raw)
		}
		suite.TestCases = append(suite.TestCases, c)
	}

	for _, c := range suite.TestCases {
		suite.Tests++
		if c.Failure != nil {
			suite.Failures++
		}
		if c.Error != nil {
			suite.Errors++
		}
	}

	suites := JUnitTestSuites{
		Name:       "Compose",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}

	if _, err := f.writer.Write([]byte(xml.Header)); err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func processCase(s execution.JobSummary) JUnitTestCase {
	c := JUnitTestCase{Name: "compose", ClassName: s.Profile}
	switch s.Outcome {
	case values.StateSucceeded:
		c.SystemOut = s.Text()
	case values.StateAborted:
		c.Error = &JUnitError{Message: "compose aborted", Content: s.Text()}
	default:
		msg := "compose failed"
		if s.SpawnError != "" {
			msg = s.SpawnError
		}
		c.Failure = &JUnitFailure{Message: msg, Content: s.Text()}
	}
	return c
}

// continuationsOf returns the raw continuation lines following messages[i].
func continuationsOf(record *execution.JobRecord, i int) []string {
	var lines []string
	for _, m := range record.Messages[i+1:] {
		if !m.Continuation {
			break
		}
		lines = append(lines, m.Raw)
	}
	return lines
}

func withNote(note, text string) string {
	if note == "" {
		return text
	}
	if text == "" {
		return note
	}
	return note + "\n" + text
}

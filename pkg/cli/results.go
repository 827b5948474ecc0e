package cli

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ooxml-tools/ooxml-validator/pkg/host"
	"github.com/ooxml-tools/ooxml-validator/pkg/parser"
	"github.com/ooxml-tools/ooxml-validator/pkg/report"
	"github.com/ooxml-tools/ooxml-validator/pkg/validator"
	yaml "gopkg.in/yaml.v2"
)

// File statuses
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// ErrorEntry is one validation error in the command output
type ErrorEntry struct {
	ID                    string   `json:"id,omitempty" yaml:"id,omitempty"`
	Description           string   `json:"description,omitempty" yaml:"description,omitempty"`
	ErrorType             *int     `json:"errorType,omitempty" yaml:"errorType,omitempty"`
	XPath                 string   `json:"xpath,omitempty" yaml:"xpath,omitempty"`
	PartURI               string   `json:"partUri,omitempty" yaml:"partUri,omitempty"`
	NamespacesDefinitions []string `json:"namespacesDefinitions,omitempty" yaml:"namespacesDefinitions,omitempty"`
}

// FileResult is the outcome of validating one file
type FileResult struct {
	File          string              `json:"file" yaml:"file"`
	Status        string              `json:"status" yaml:"status"`
	FormatVersion string              `json:"formatVersion,omitempty" yaml:"formatVersion,omitempty"`
	Duration      string              `json:"duration" yaml:"duration"`
	ErrorCount    int                 `json:"errorCount" yaml:"errorCount"`
	Errors        []ErrorEntry        `json:"errors,omitempty" yaml:"errors,omitempty"`
	ExportPath    string              `json:"exportPath,omitempty" yaml:"exportPath,omitempty"`
	ReportPath    string              `json:"reportPath,omitempty" yaml:"reportPath,omitempty"`
	ErrorMessage  string              `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Notifications []host.Notification `json:"notifications,omitempty" yaml:"notifications,omitempty"`
}

// RunSummary contains results for every validated file
type RunSummary struct {
	Total    int          `json:"total" yaml:"total"`
	Valid    int          `json:"valid" yaml:"valid"`
	Invalid  int          `json:"invalid" yaml:"invalid"`
	Failed   int          `json:"failed" yaml:"failed"`
	Duration string       `json:"duration" yaml:"duration"`
	Files    []FileResult `json:"files" yaml:"files"`
}

// JUnitTestSuite represents a JUnit XML test suite
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      string          `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case in JUnit XML format
type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitFailure `xml:"error,omitempty"`
}

// JUnitFailure represents a failure or error in JUnit XML format
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// OutputFormat represents the output format for validation results
type OutputFormat string

const (
	OutputFormatConsole OutputFormat = "console"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatJUnit   OutputFormat = "junit"
)

// NewFileResult converts a validation run into its output form
func NewFileResult(run *validator.Run, runErr error, notifications []host.Notification) FileResult {
	result := FileResult{
		File:          run.TargetFile,
		FormatVersion: run.FormatVersion.Label,
		Duration:      formatDuration(run.Duration),
		ErrorCount:    len(run.Errors),
		ExportPath:    run.ExportPath,
		ReportPath:    run.ReportPath,
		Notifications: notifications,
	}

	switch {
	case runErr != nil:
		result.Status = StatusFailed
		result.ErrorMessage = validator.UserMessage(runErr)
		// A failed run's report was disposed
		result.ReportPath = ""
	case len(run.Errors) > 0:
		result.Status = StatusInvalid
	default:
		result.Status = StatusValid
	}

	for _, ve := range run.Errors {
		result.Errors = append(result.Errors, newErrorEntry(ve))
	}
	return result
}

func newErrorEntry(ve parser.ValidationError) ErrorEntry {
	return ErrorEntry{
		ID:                    value(ve.ID),
		Description:           value(ve.Description),
		ErrorType:             ve.ErrorType,
		XPath:                 value(ve.XPath),
		PartURI:               value(ve.PartURI),
		NamespacesDefinitions: ve.NamespacesDefinitions,
	}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewRunSummary tallies file results
func NewRunSummary(files []FileResult, duration time.Duration) *RunSummary {
	summary := &RunSummary{
		Total:    len(files),
		Duration: formatDuration(duration),
		Files:    files,
	}
	for _, f := range files {
		switch f.Status {
		case StatusValid:
			summary.Valid++
		case StatusInvalid:
			summary.Invalid++
		default:
			summary.Failed++
		}
	}
	return summary
}

// FormatResults outputs the validation results in the specified format
func FormatResults(summary *RunSummary, format OutputFormat) (string, error) {
	switch format {
	case OutputFormatConsole:
		return formatConsole(summary), nil
	case OutputFormatJSON:
		return formatJSON(summary)
	case OutputFormatYAML:
		return formatYAML(summary)
	case OutputFormatJUnit:
		return formatJUnit(summary)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatConsole formats the results for a terminal
func formatConsole(summary *RunSummary) string {
	var b strings.Builder
	green := color.New(color.FgGreen).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	yellow := color.New(color.FgYellow).SprintfFunc()

	for _, f := range summary.Files {
		name := filepath.Base(f.File)
		switch f.Status {
		case StatusValid:
			b.WriteString(green("✓ %s: %s", name, report.Summary(nil)))
			b.WriteString("\n")
		case StatusInvalid:
			b.WriteString(red("✗ %s: %s", name, summaryLine(f.ErrorCount)))
			b.WriteString("\n")
			for i, e := range f.Errors {
				fmt.Fprintf(&b, "  [%d] %s: %s\n", i+1, orDash(e.ID), orDash(e.Description))
				if e.PartURI != "" || e.XPath != "" {
					fmt.Fprintf(&b, "      at %s %s\n", e.PartURI, e.XPath)
				}
			}
		default:
			b.WriteString(red("✗ %s: validation failed: %s", name, f.ErrorMessage))
			b.WriteString("\n")
		}

		if f.FormatVersion != "" && f.Status != StatusFailed {
			fmt.Fprintf(&b, "  Validated against Office %s\n", f.FormatVersion)
		}
		if f.ExportPath != "" {
			fmt.Fprintf(&b, "  Log saved as %q\n", f.ExportPath)
		}
		if f.ReportPath != "" {
			fmt.Fprintf(&b, "  Report: %s\n", f.ReportPath)
		}
	}

	if summary.Total > 1 {
		b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
		fmt.Fprintf(&b, "Summary: %d total\n", summary.Total)
		if summary.Valid > 0 {
			b.WriteString(green("  ✓ Valid: %d", summary.Valid) + "\n")
		}
		if summary.Invalid > 0 {
			b.WriteString(red("  ✗ Invalid: %d", summary.Invalid) + "\n")
		}
		if summary.Failed > 0 {
			b.WriteString(yellow("  ⚠ Failed: %d", summary.Failed) + "\n")
		}
	}

	return b.String()
}

// summaryLine reuses the report headline for a count
func summaryLine(count int) string {
	return report.Summary(make([]parser.ValidationError, count))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatJSON formats the results as JSON
func formatJSON(summary *RunSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the results as YAML
func formatYAML(summary *RunSummary) (string, error) {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

// formatJUnit formats the results as JUnit XML, one test case per file
func formatJUnit(summary *RunSummary) (string, error) {
	suite := JUnitTestSuite{
		Name:      "ooxml-validation",
		Tests:     summary.Total,
		Failures:  summary.Invalid,
		Errors:    summary.Failed,
		Time:      summary.Duration,
		TestCases: make([]JUnitTestCase, 0, len(summary.Files)),
	}

	for _, result := range summary.Files {
		testCase := JUnitTestCase{
			Name:      filepath.Base(result.File),
			ClassName: "ooxml-validator",
			Time:      result.Duration,
		}

		switch result.Status {
		case StatusInvalid:
			// Build detailed failure content with the validation errors of this file
			var content strings.Builder
			for i, e := range result.Errors {
				fmt.Fprintf(&content, "[%d] %s: %s\n", i+1, orDash(e.ID), orDash(e.Description))
				if e.PartURI != "" || e.XPath != "" {
					fmt.Fprintf(&content, "    at %s %s\n", e.PartURI, e.XPath)
				}
			}
			testCase.Failure = &JUnitFailure{
				Message: summaryLine(result.ErrorCount),
				Type:    "ValidationError",
				Content: content.String(),
			}
		case StatusFailed:
			testCase.Error = &JUnitFailure{
				Message: result.ErrorMessage,
				Type:    "ValidatorError",
			}
		}

		suite.TestCases = append(suite.TestCases, testCase)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}

	return xml.Header + string(data), nil
}

// formatDuration converts a time.Duration to a string in seconds (for JUnit compatibility)
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

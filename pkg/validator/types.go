package validator

import (
	"context"
	"time"

	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/ooxml-tools/ooxml-validator/pkg/executor"
	"github.com/ooxml-tools/ooxml-validator/pkg/parser"
)

// State of a validation run
type State string

const (
	StateIdle              State = "Idle"
	StatePresentingLoading State = "Presenting(loading)"
	StateRuntimeResolving  State = "RuntimeResolving"
	StateInvoking          State = "Invoking"
	StateNormalizing       State = "Normalizing"
	StateExporting         State = "Exporting"
	StatePresentingResult  State = "Presenting(result)"
	StateTerminal          State = "Terminal"
	StateFailed            State = "Failed"
)

// Notifier shows messages to the user
type Notifier interface {
	Error(message string, modal bool)
	Warning(message, detail string, modal bool)
}

// Surface displays report markup until disposed
type Surface interface {
	Show(markup string) error
	Dispose() error
}

// SurfaceFactory opens the surface a run presents its report on
type SurfaceFactory func(settings *config.Settings, targetFile string) (Surface, error)

// SettingsSource resolves the settings; it is called once per run
type SettingsSource func() (*config.Settings, error)

// RuntimeResolver finds the dotnet executable
type RuntimeResolver interface {
	Resolve(ctx context.Context, configuredPath string) (string, error)
}

// Runner runs the external validator
type Runner interface {
	Invoke(ctx context.Context, dotnetPath, targetFile, versionToken string) (*executor.ExecutionResult, error)
}

// LogExporter saves validation errors to a log file
type LogExporter interface {
	Export(errs []parser.ValidationError, requestedPath string) (string, error)
}

// Run is the outcome of validating one file
type Run struct {
	TargetFile    string                   `json:"targetFile" yaml:"targetFile"`
	FormatVersion config.FormatVersion     `json:"formatVersion" yaml:"formatVersion"`
	DotnetPath    string                   `json:"dotnetPath,omitempty" yaml:"dotnetPath,omitempty"`
	ExitCode      int                      `json:"exitCode" yaml:"exitCode"`
	Stdout        string                   `json:"-" yaml:"-"`
	Stderr        string                   `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	Errors        []parser.ValidationError `json:"errors" yaml:"errors"`
	ExportPath    string                   `json:"exportPath,omitempty" yaml:"exportPath,omitempty"`
	ReportPath    string                   `json:"reportPath,omitempty" yaml:"reportPath,omitempty"`
	State         State                    `json:"state" yaml:"state"`
	Duration      time.Duration            `json:"duration" yaml:"duration"`
}

// Valid reports whether the run finished and found no errors
func (r *Run) Valid() bool {
	return r.State == StateTerminal && len(r.Errors) == 0
}

package validator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/ooxml-tools/ooxml-validator/pkg/dotnet"
	"github.com/ooxml-tools/ooxml-validator/pkg/executor"
	"github.com/ooxml-tools/ooxml-validator/pkg/export"
	"github.com/ooxml-tools/ooxml-validator/pkg/parser"
	"github.com/ooxml-tools/ooxml-validator/pkg/report"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/spf13/afero"
)

// ErrUnexpected wraps a panic recovered during a run
var ErrUnexpected = errors.New("unexpected error during validation")

// Deps are the capabilities a Validator works with.
// Settings, Notifier and Surfaces are required.
type Deps struct {
	Settings SettingsSource
	Notifier Notifier
	Surfaces SurfaceFactory

	// Provider acquires a runtime when none is configured, nil if unavailable
	Provider dotnet.RuntimeProvider

	// Fs receives exported logs, defaults to the OS filesystem
	Fs afero.Fs

	// Optional factories, defaulting to the dotnet, executor and export packages
	NewResolver func(settings *config.Settings) RuntimeResolver
	NewRunner   func(settings *config.Settings) Runner
	NewExporter func(settings *config.Settings) LogExporter

	Now func() time.Time
}

// Validator runs OOXML validations
type Validator struct {
	deps Deps
}

// New creates a Validator, filling in the default factories
func New(deps Deps) *Validator {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewResolver == nil {
		provider, notifier := deps.Provider, deps.Notifier
		deps.NewResolver = func(settings *config.Settings) RuntimeResolver {
			return dotnet.NewLocator(provider, notifier, settings.RuntimeVersion)
		}
	}
	if deps.NewRunner == nil {
		provider := deps.Provider
		deps.NewRunner = func(settings *config.Settings) Runner {
			return executor.NewInvoker(settings.GetValidatorPath(), provider)
		}
	}
	if deps.NewExporter == nil {
		fs, now := deps.Fs, deps.Now
		deps.NewExporter = func(settings *config.Settings) LogExporter {
			return export.NewExporter(fs, settings.OverwriteLogFile).WithClock(now)
		}
	}
	return &Validator{deps: deps}
}

// Validate runs the validator on targetFile and presents the report.
// The returned Run is never nil; on failure its State is StateFailed.
func (v *Validator) Validate(ctx context.Context, targetFile string) (run *Run, err error) {
	log := util.GetLogger().WithValues("file", targetFile)
	start := v.deps.Now()
	run = &Run{TargetFile: targetFile, State: StateIdle}

	var surface Surface
	defer func() {
		if r := recover(); r != nil {
			err = v.fail(log, run, surface, fmt.Errorf("%w: %v", ErrUnexpected, r))
		}
		run.Duration = v.deps.Now().Sub(start)
	}()

	settings, err := v.deps.Settings()
	if err != nil {
		return run, v.fail(log, run, nil, fmt.Errorf("failed to load settings: %w", err))
	}
	run.FormatVersion = settings.ResolveFormatVersion()

	v.transition(log, run, StatePresentingLoading)
	surface, err = v.deps.Surfaces(settings, targetFile)
	if err != nil {
		return run, v.fail(log, run, nil, fmt.Errorf("failed to open report: %w", err))
	}
	if p, ok := surface.(interface{ Path() string }); ok {
		run.ReportPath = p.Path()
	}
	if err := surface.Show(report.RenderLoading()); err != nil {
		return run, v.fail(log, run, surface, err)
	}

	v.transition(log, run, StateRuntimeResolving)
	dotnetPath, err := v.deps.NewResolver(settings).Resolve(ctx, settings.DotnetPath)
	if err != nil {
		return run, v.fail(log, run, surface, err)
	}
	run.DotnetPath = dotnetPath

	v.transition(log, run, StateInvoking)
	result, err := v.deps.NewRunner(settings).Invoke(ctx, dotnetPath, targetFile, run.FormatVersion.Token)
	if result != nil {
		run.ExitCode = result.ExitCode
		run.Stdout = string(result.Stdout)
		run.Stderr = string(result.Stderr)
	}
	if err != nil {
		return run, v.fail(log, run, surface, err)
	}
	raw, err := parser.ParseOutput(result.Stdout)
	if err != nil {
		return run, v.fail(log, run, surface, err)
	}

	v.transition(log, run, StateNormalizing)
	run.Errors = parser.Normalize(raw)

	if len(run.Errors) > 0 && settings.OutputFilePath != "" {
		v.transition(log, run, StateExporting)
		path, err := v.deps.NewExporter(settings).Export(run.Errors, settings.OutputFilePath)
		if err != nil {
			log.Error(err, "Failed to save error log", "path", settings.OutputFilePath)
			v.deps.Notifier.Error(UserMessage(err), false)
		} else {
			run.ExportPath = path
		}
	}

	v.transition(log, run, StatePresentingResult)
	html, err := report.Render(run.Errors, report.Options{
		FormatVersion: run.FormatVersion.Label,
		FileName:      filepath.Base(targetFile),
		ExportPath:    run.ExportPath,
	})
	if err != nil {
		return run, v.fail(log, run, surface, err)
	}
	if err := surface.Show(html); err != nil {
		return run, v.fail(log, run, surface, err)
	}

	v.transition(log, run, StateTerminal)
	log.Info("Validation complete", "errors", len(run.Errors), "summary", report.Summary(run.Errors))
	return run, nil
}

func (v *Validator) transition(log logr.Logger, run *Run, state State) {
	log.V(1).Info("State transition", "from", run.State, "state", state)
	run.State = state
}

// fail tears the surface down and reports err modally
func (v *Validator) fail(log logr.Logger, run *Run, surface Surface, err error) error {
	log.Error(err, "Validation failed", "state", run.State)
	run.State = StateFailed

	if surface != nil {
		if derr := surface.Dispose(); derr != nil {
			log.Error(derr, "Failed to dispose report")
		}
	}

	v.deps.Notifier.Error(UserMessage(err), true)
	return err
}

// UserMessage is the text shown to the user for err
func UserMessage(err error) string {
	var procErr *executor.ProcessError
	var writeErr *export.FileWriteError

	switch {
	case errors.Is(err, dotnet.ErrAcquisitionFacilityMissing):
		return dotnet.FacilityMissingMessage
	case errors.As(err, &procErr):
		return procErr.Stderr
	case errors.Is(err, export.ErrInvalidExportPath):
		return "outputFilePath must be an absolute path"
	case errors.As(err, &writeErr):
		return fmt.Sprintf("Could not save a log of the errors to %s: %v", writeErr.Path, writeErr.Cause)
	default:
		return err.Error()
	}
}

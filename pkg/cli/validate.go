package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/ooxml-tools/ooxml-validator/pkg/dotnet"
	"github.com/ooxml-tools/ooxml-validator/pkg/host"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/ooxml-tools/ooxml-validator/pkg/validator"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ErrValidationErrors is returned with --fail-on-errors when a file has errors
var ErrValidationErrors = errors.New("validation errors found")

type validateOptions struct {
	formatVersion string
	outputFile    string
	overwrite     bool
	dotnetPath    string
	validatorPath string
	reportPath    string
	output        string
	failOnErrors  bool
	noAcquire     bool
}

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	validateCmd := &cobra.Command{
		Use:   "validate <file> [file...]",
		Short: "Validate OOXML files",
		Long: `Validate one or more Office Open XML files against an Office version.

The validator runs on a .NET runtime. A configured dotnet path is used when it
is a valid runtime, otherwise an installed runtime of the configured version is
searched for. An HTML report is written for each file, and the errors can be
saved as a CSV or JSON log with --output-file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	validateCmd.Flags().StringVar(&opts.formatVersion, "format-version", "", "Office version to validate against (see 'versions')")
	validateCmd.Flags().StringVar(&opts.outputFile, "output-file", "", "Absolute path of a CSV or JSON log of the errors")
	validateCmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Overwrite the log file instead of adding a timestamp")
	validateCmd.Flags().StringVar(&opts.dotnetPath, "dotnet-path", "", "Path to the dotnet executable")
	validateCmd.Flags().StringVar(&opts.validatorPath, "validator-path", "", "Path to "+config.ValidatorAssembly)
	validateCmd.Flags().StringVar(&opts.reportPath, "report", "", "Path of the HTML report (default: temp directory)")
	validateCmd.Flags().StringVarP(&opts.output, "output", "o", string(OutputFormatConsole), "Output format (console, json, yaml, junit)")
	validateCmd.Flags().BoolVar(&opts.failOnErrors, "fail-on-errors", false, "Exit with an error when validation errors are found")
	validateCmd.Flags().BoolVar(&opts.noAcquire, "no-acquire", false, "Don't search for a .NET runtime when none is configured")

	return validateCmd
}

// overrides applies the flags the user set on top of the resolved settings
func (o *validateOptions) overrides(cmd *cobra.Command) func(*config.Settings) {
	flags := cmd.Flags()
	return func(s *config.Settings) {
		if flags.Changed("format-version") {
			s.FileFormatVersion = o.formatVersion
		}
		if flags.Changed("output-file") {
			s.OutputFilePath = o.outputFile
		}
		if flags.Changed("overwrite") {
			s.OverwriteLogFile = o.overwrite
		}
		if flags.Changed("dotnet-path") {
			s.DotnetPath = o.dotnetPath
		}
		if flags.Changed("validator-path") {
			s.ValidatorPath = o.validatorPath
		}
		if flags.Changed("report") {
			s.ReportPath = o.reportPath
		}
	}
}

func runValidate(cmd *cobra.Command, opts *validateOptions, files []string) error {
	log := util.GetLogger()
	format := OutputFormat(opts.output)

	switch format {
	case OutputFormatConsole, OutputFormatJSON, OutputFormatYAML, OutputFormatJUnit:
	default:
		return fmt.Errorf("unsupported output format: %s", opts.output)
	}

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory, not an OOXML file", f)
		}
		if !validator.IsOOXMLFile(f) {
			log.Info("File doesn't have an Office Open XML extension, validating anyway", "file", f)
		}
	}

	fs := afero.NewOsFs()
	source := settingsSource(opts.overrides(cmd))

	var provider dotnet.RuntimeProvider
	if !opts.noAcquire {
		provider = dotnet.NewPathProvider()
	}

	start := time.Now()
	results := make([]FileResult, 0, len(files))

	for i, file := range files {
		if len(files) > 1 {
			log.Info("Validating file", "index", i+1, "total", len(files), "file", file)
		}

		// Each run gets its own notifier and surface
		notifier := host.NewTerminalNotifier(cmd.ErrOrStderr())
		v := validator.New(validator.Deps{
			Settings: source.Load,
			Notifier: notifier,
			Surfaces: fileSurfaces(fs),
			Provider: provider,
			Fs:       fs,
		})

		run, err := v.Validate(contextOrBackground(cmd.Context()), file)
		results = append(results, NewFileResult(run, err, notifier.History()))
	}

	summary := NewRunSummary(results, time.Since(start))

	output, err := FormatResults(summary, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	if format != OutputFormatConsole {
		fmt.Fprintln(cmd.OutOrStdout())
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d validation(s) failed", summary.Failed, summary.Total)
	}
	if opts.failOnErrors && summary.Invalid > 0 {
		return fmt.Errorf("%w in %d of %d file(s)", ErrValidationErrors, summary.Invalid, summary.Total)
	}
	return nil
}

// fileSurfaces opens an HTML file surface at the configured report path
func fileSurfaces(fs afero.Fs) validator.SurfaceFactory {
	return func(settings *config.Settings, targetFile string) (validator.Surface, error) {
		return host.NewFileSurface(fs, settings.GetReportPath(targetFile)), nil
	}
}

// contextOrBackground guards against commands executed without a context
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

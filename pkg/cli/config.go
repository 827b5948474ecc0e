package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/ooxml-tools/ooxml-validator/pkg/export"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configOutputFile     string
	configNonInteractive bool
)

// NewConfigCmd creates the config command with subcommands
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ooxml-validator settings",
		Long:  `Create and inspect the settings used by validate.`,
	}

	// Add subcommands
	configCmd.AddCommand(NewConfigInitCmd())
	configCmd.AddCommand(NewConfigShowCmd())

	return configCmd
}

// NewConfigInitCmd creates the config init command
func NewConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a settings file",
		Long: `Interactively create a settings file for ooxml-validator.

Settings include:
  - The Office version to validate against
  - Where to save a log of the errors, and whether to overwrite it
  - The dotnet executable and validator paths`,
		RunE: runConfigInit,
	}

	cmd.Flags().StringVarP(&configOutputFile, "output", "o", "", "Output file path (default: "+config.DefaultSettingsFile+")")
	cmd.Flags().BoolVar(&configNonInteractive, "non-interactive", false, "Write the default settings without prompting")

	return cmd
}

// NewConfigShowCmd creates the config show command
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Long:  `Print the settings validate would use, after applying the settings file and environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsSource(nil).Load()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	log := util.GetLogger()

	settings := config.Defaults()
	if !configNonInteractive {
		if err := promptSettings(settings); err != nil {
			return fmt.Errorf("failed to create settings: %w", err)
		}
	}

	if err := config.Validate(settings); err != nil {
		return err
	}

	// Determine output file
	outputFile := configOutputFile
	if outputFile == "" {
		outputFile = config.DefaultSettingsFile
	}

	if err := writeSettings(afero.NewOsFs(), outputFile, settings); err != nil {
		return err
	}

	log.Info("Settings created", "file", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created settings: %s\n", outputFile)

	return nil
}

// writeSettings marshals settings to YAML at path, creating its directory
func writeSettings(fs afero.Fs, path string, settings *config.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := export.WriteFileAtomic(fs, path, data); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// promptSettings asks for each setting interactively
func promptSettings(settings *config.Settings) error {
	labels := make([]string, 0, len(settings.FormatVersions))
	for _, v := range settings.FormatVersions {
		labels = append(labels, v.Label)
	}

	versionPrompt := promptui.Select{
		Label:     "Office version to validate against",
		Items:     labels,
		CursorPos: len(labels) - 1,
	}
	_, version, err := versionPrompt.Run()
	if err != nil {
		return fmt.Errorf("failed to select format version: %w", err)
	}
	settings.FileFormatVersion = version

	// Prompt for log path (optional)
	prompt := promptui.Prompt{
		Label:    "Absolute path to save a log of the errors (.csv or .json, press Enter to skip)",
		Default:  "",
		Validate: validateLogPath,
	}
	outputPath, err := prompt.Run()
	if err != nil && err != promptui.ErrInterrupt {
		return err
	}
	settings.OutputFilePath = outputPath

	if settings.OutputFilePath != "" {
		overwritePrompt := promptui.Select{
			Label: "When the log file exists",
			Items: []string{"Keep it and add a timestamp", "Overwrite it"},
		}
		idx, _, err := overwritePrompt.Run()
		if err != nil {
			return fmt.Errorf("failed to select overwrite mode: %w", err)
		}
		settings.OverwriteLogFile = idx == 1
	}

	// Prompt for dotnet path (optional)
	prompt = promptui.Prompt{
		Label:   "dotnet executable path (optional, press Enter to search for an installed runtime)",
		Default: "",
	}
	dotnetPath, err := prompt.Run()
	if err != nil && err != promptui.ErrInterrupt {
		return err
	}
	settings.DotnetPath = dotnetPath

	// Prompt for validator path (optional)
	prompt = promptui.Prompt{
		Label:   config.ValidatorAssembly + " path (optional, press Enter to use the bundled one)",
		Default: "",
	}
	validatorPath, err := prompt.Run()
	if err != nil && err != promptui.ErrInterrupt {
		return err
	}
	settings.ValidatorPath = validatorPath

	return nil
}

// validateLogPath accepts an empty path or one the exporter can write to
func validateLogPath(input string) error {
	if input == "" {
		return nil
	}
	if _, err := export.NormalizePath(input); err != nil {
		return err
	}
	if dir := filepath.Dir(input); dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

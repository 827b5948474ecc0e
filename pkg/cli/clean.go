package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/ooxml-tools/ooxml-validator/pkg/export"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cleanKeep   int
	cleanDryRun bool
)

// NewCleanCmd creates the clean command
func NewCleanCmd() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Clean up old error logs",
		Long: `Remove older timestamped error logs, keeping only the latest ones for each log name.

Without a directory the directory of the configured outputFilePath is cleaned.
Logs written with overwriteLogFile have no timestamp and are never removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cleanDir(args)
			if err != nil {
				return err
			}

			// Check if directory exists
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to clean - %s doesn't exist\n", dir)
				return nil
			}

			return cleanLogs(cmd, afero.NewOsFs(), dir)
		},
	}

	cleanCmd.Flags().IntVar(&cleanKeep, "keep", 1, "Number of logs to keep for each log name")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Show what would be deleted without actually deleting")

	return cleanCmd
}

// cleanDir returns the directory to clean from args or the settings
func cleanDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	settings, err := settingsSource(nil).Load()
	if err != nil {
		return "", err
	}
	if settings.OutputFilePath == "" {
		return "", fmt.Errorf("no directory given and outputFilePath is not set (see %s)", config.DefaultSettingsFile)
	}
	return filepath.Dir(settings.OutputFilePath), nil
}

func cleanLogs(cmd *cobra.Command, fs afero.Fs, dir string) error {
	out := cmd.OutOrStdout()

	result, err := export.Clean(fs, dir, cleanKeep, cleanDryRun)
	if err != nil {
		return err
	}

	if len(result.Deleted) == 0 && len(result.Failed) == 0 {
		fmt.Fprintln(out, "Nothing to clean - only latest logs exist")
		return nil
	}

	// Show what was (or would be) deleted
	fmt.Fprintf(out, "Found %d old log(s) to clean up:\n", len(result.Deleted)+len(result.Failed))
	for _, name := range result.Deleted {
		fmt.Fprintf(out, "  - %s\n", name)
	}

	fmt.Fprintf(out, "\nKeeping %d latest log(s):\n", len(result.Kept))
	for _, name := range result.Kept {
		fmt.Fprintf(out, "  + %s\n", name)
	}

	if cleanDryRun {
		fmt.Fprintln(out, color.CyanString("\nDry run mode - no files were deleted"))
		return nil
	}

	for name, ferr := range result.Failed {
		fmt.Fprintln(out, color.RedString("✗ Failed to delete %s: %v", name, ferr))
	}

	fmt.Fprintln(out, color.GreenString("\n✓ Cleaned up %d old log(s)", len(result.Deleted)))
	return nil
}

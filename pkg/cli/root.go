package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/ooxml-tools/ooxml-validator/pkg/util"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	settingsFile string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ooxml-validator",
		Short: "Validate Office Open XML documents",
		Long: `ooxml-validator checks Office Open XML files (.docx, .xlsx, .pptx)
against the schemas of an Office version using the OOXML Validator
running on a .NET runtime.

Errors are shown in an HTML report and can be saved as a CSV or JSON log.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.InitLogger(verbose)
			if err := loadDotEnv(); err != nil {
				util.GetLogger().V(1).Info("Failed to load .env file", "error", err.Error())
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "config", "c", "", "Path to settings file (default: "+config.DefaultSettingsFile+")")

	// Add subcommands
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionsCmd())
	rootCmd.AddCommand(NewCleanCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDotEnv loads files (default .env) into the environment. A missing file
// is not an error.
func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// settingsSource resolves settings from --config, the environment and overrides
func settingsSource(overrides func(*config.Settings)) config.Source {
	return config.Source{
		File:      settingsFile,
		Env:       os.LookupEnv,
		Overrides: overrides,
	}
}

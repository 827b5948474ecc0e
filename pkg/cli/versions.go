package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ooxml-tools/ooxml-validator/pkg/config"
	"github.com/spf13/cobra"
)

// NewVersionsCmd creates the versions command
func NewVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the Office versions files can be validated against",
		Long: `List the configured Office version labels and the validator tokens they map to.

The version used by validate is marked; an unknown or empty fileFormatVersion
falls back to the latest version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsSource(nil).Load()
			if err != nil {
				return err
			}
			return printVersions(cmd.OutOrStdout(), settings)
		},
	}
}

func printVersions(out io.Writer, settings *config.Settings) error {
	selected := settings.ResolveFormatVersion()

	width := len("LABEL")
	for _, v := range settings.FormatVersions {
		width = max(width, len(v.Label))
	}

	if _, err := fmt.Fprintf(out, "  %-*s  %s\n", width, "LABEL", "TOKEN"); err != nil {
		return err
	}
	for _, v := range settings.FormatVersions {
		line := fmt.Sprintf("  %-*s  %s", width, v.Label, v.Token)
		if v == selected {
			line = color.GreenString("* %-*s  %s (default)", width, v.Label, v.Token)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

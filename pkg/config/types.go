package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultRuntimeVersion is the .NET runtime the validator targets
	DefaultRuntimeVersion = "6.0"

	// ValidatorAssembly is the file name of the OOXML validator
	ValidatorAssembly = "OOXMLValidatorCLI.dll"
)

// Settings holds everything a validation run reads from configuration.
// Settings are resolved fresh for every run and never cached.
type Settings struct {
	// FileFormatVersion is the Office version label to validate against (e.g. "2019")
	FileFormatVersion string `yaml:"fileFormatVersion,omitempty"`

	// OutputFilePath is where errors are logged (.csv or .json), empty disables logging
	OutputFilePath string `yaml:"outputFilePath,omitempty"`

	// OverwriteLogFile disables the timestamp suffix on the log file
	OverwriteLogFile bool `yaml:"overwriteLogFile,omitempty"`

	// DotnetPath is an explicit path to the dotnet executable
	DotnetPath string `yaml:"dotnetPath,omitempty"`

	// ValidatorPath is the path to OOXMLValidatorCLI.dll
	ValidatorPath string `yaml:"validatorPath,omitempty"`

	// RuntimeVersion is the .NET runtime version to acquire
	RuntimeVersion string `yaml:"runtimeVersion" validate:"required"`

	// ReportPath is where the HTML report is written
	ReportPath string `yaml:"reportPath,omitempty"`

	// FormatVersions maps version labels to validator tokens, oldest first
	FormatVersions []FormatVersion `yaml:"formatVersions" validate:"required,min=1,dive"`
}

// FormatVersion maps a human label to the token the validator understands
type FormatVersion struct {
	Label string `yaml:"label" json:"label" validate:"required"`
	Token string `yaml:"token" json:"token" validate:"required"`
}

// DefaultFormatVersions returns the validator's FileFormatVersions, oldest first
func DefaultFormatVersions() []FormatVersion {
	return []FormatVersion{
		{Label: "2007", Token: "Office2007"},
		{Label: "2010", Token: "Office2010"},
		{Label: "2013", Token: "Office2013"},
		{Label: "2016", Token: "Office2016"},
		{Label: "2019", Token: "Office2019"},
		{Label: "2021", Token: "Office2021"},
		{Label: "Microsoft365", Token: "Microsoft365"},
	}
}

// Defaults returns settings with every default applied
func Defaults() *Settings {
	return &Settings{
		RuntimeVersion: DefaultRuntimeVersion,
		FormatVersions: DefaultFormatVersions(),
	}
}

// ResolveFormatVersion returns the configured format version, or the latest
// one when the configured label is empty or unknown
func (s *Settings) ResolveFormatVersion() FormatVersion {
	for _, v := range s.FormatVersions {
		if strings.EqualFold(v.Label, s.FileFormatVersion) {
			return v
		}
	}
	if len(s.FormatVersions) == 0 {
		return FormatVersion{}
	}
	return s.FormatVersions[len(s.FormatVersions)-1]
}

// GetValidatorPath returns the validator path with a default next to the executable
func (s *Settings) GetValidatorPath() string {
	if s.ValidatorPath != "" {
		return s.ValidatorPath
	}
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("bin", ValidatorAssembly)
	}
	return filepath.Join(filepath.Dir(exe), "bin", ValidatorAssembly)
}

// GetReportPath returns the report path with a default in the temp directory
func (s *Settings) GetReportPath(targetFile string) string {
	if s.ReportPath != "" {
		return s.ReportPath
	}
	name := filepath.Base(targetFile) + ".html"
	return filepath.Join(os.TempDir(), "ooxml-validator", name)
}

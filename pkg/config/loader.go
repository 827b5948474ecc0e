package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is auto-discovered relative to the working directory
const DefaultSettingsFile = ".ooxml/settings.yaml"

// Environment variables that override the settings file
const (
	EnvFileFormatVersion = "OOXML_FILE_FORMAT_VERSION"
	EnvOutputFilePath    = "OOXML_OUTPUT_FILE_PATH"
	EnvOverwriteLogFile  = "OOXML_OVERWRITE_LOG_FILE"
	EnvDotnetPath        = "OOXML_DOTNET_PATH"
	EnvValidatorPath     = "OOXML_VALIDATOR_PATH"
)

// LoadSettings reads settings from a YAML file on top of the defaults
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	settings := Defaults()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	return settings, nil
}

// ApplyEnv overrides settings with values found through lookup
func ApplyEnv(settings *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFileFormatVersion); ok {
		settings.FileFormatVersion = v
	}
	if v, ok := lookup(EnvOutputFilePath); ok {
		settings.OutputFilePath = v
	}
	if v, ok := lookup(EnvOverwriteLogFile); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvOverwriteLogFile, v, err)
		}
		settings.OverwriteLogFile = b
	}
	if v, ok := lookup(EnvDotnetPath); ok {
		settings.DotnetPath = v
	}
	if v, ok := lookup(EnvValidatorPath); ok {
		settings.ValidatorPath = v
	}
	return nil
}

// Source describes where settings come from.
// Precedence is Overrides > Env > File > defaults.
type Source struct {
	// File is an explicit settings file; empty means try DefaultSettingsFile
	File string

	// Env looks up environment variables, nil disables them
	Env func(string) (string, bool)

	// Overrides is applied last, typically from command line flags
	Overrides func(*Settings)
}

// Load resolves and validates the settings
func (src Source) Load() (*Settings, error) {
	settings := Defaults()

	switch {
	case src.File != "":
		loaded, err := LoadSettings(src.File)
		if err != nil {
			return nil, err
		}
		settings = loaded
	default:
		if _, err := os.Stat(DefaultSettingsFile); err == nil {
			loaded, err := LoadSettings(DefaultSettingsFile)
			if err != nil {
				return nil, err
			}
			settings = loaded
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat settings file: %w", err)
		}
	}

	if src.Env != nil {
		if err := ApplyEnv(settings, src.Env); err != nil {
			return nil, err
		}
	}

	if src.Overrides != nil {
		src.Overrides(settings)
	}

	if err := Validate(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks if the settings are usable for a run
func Validate(settings *Settings) error {
	// Run struct validation
	if err := validate.Struct(settings); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Custom validation: labels must be unique or the mapping is ambiguous
	if err := validateFormatVersions(settings.FormatVersions); err != nil {
		return err
	}

	return nil
}

// validateFormatVersions ensures no two entries share a label
func validateFormatVersions(versions []FormatVersion) error {
	seen := make(map[string]bool, len(versions))
	for _, v := range versions {
		key := strings.ToLower(v.Label)
		if seen[key] {
			return fmt.Errorf("duplicate format version label: %s", v.Label)
		}
		seen[key] = true
	}
	return nil
}

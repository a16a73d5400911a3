// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
// Overrides run after parsing and before validation.
func Load[T any](filename string, target *T, overrides ...func(*T)) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return finish(target, overrides)
}

// LoadOptional behaves like Load, but a missing file leaves target as it is
// (typically pre-filled defaults) and only runs validation. It reports whether
// the file was read.
func LoadOptional[T any](filename string, target *T, overrides ...func(*T)) (bool, error) {
	if filename == "" {
		return false, finish(target, overrides)
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return false, finish(target, overrides)
	}
	return true, Load(filename, target, overrides...)
}

func finish[T any](target *T, overrides []func(*T)) error {
	for _, o := range overrides {
		o(target)
	}
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

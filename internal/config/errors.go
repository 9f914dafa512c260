package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidConfigPath indicates configPath is empty or not a directory.
	ErrInvalidConfigPath = errors.New("configPath is required and must be an existing directory")

	// ErrValidationFailed indicates a configuration value is invalid.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")
)

// ValidationError describes a single invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value != nil && e.Value != "" {
		return fmt.Sprintf("invalid config %s (%v): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

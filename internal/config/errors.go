package config

import (
	"fmt"
	"strings"
)

// Error types reported in ConfigurationError.ErrorType.
const (
	ErrorTypeIO         = "io"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
)

// ConfigurationError represents a structured error that occurs during configuration loading.
type ConfigurationError struct {
	FilePath    string   // Full path to the file that caused the error
	ErrorType   string   // Type of error (io, parse, validation)
	Message     string   // Human-readable error message
	Suggestions []string // Actionable suggestions to fix the error
	Err         error    // Underlying cause, if any
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s (%s): %s", ce.FilePath, ce.ErrorType, ce.Message)
}

// Unwrap returns the underlying cause.
func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

// DetailedError returns a detailed error message with all context
func (ce *ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration error in %s", ce.FilePath))
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

func newConfigurationError(path, errorType string, err error, message string, suggestions ...string) *ConfigurationError {
	return &ConfigurationError{
		FilePath:    path,
		ErrorType:   errorType,
		Message:     message,
		Suggestions: suggestions,
		Err:         err,
	}
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"fitexport/internal/config"
	"fitexport/internal/fitbit"
)

// ConfigError indicates the credentials file could not be loaded.
type ConfigError struct {
	// Path is the configuration file that was read.
	Path string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *ConfigError) Error() string {
	var cfgErr *config.ConfigurationError
	if errors.As(e.Reason, &cfgErr) {
		return cfgErr.DetailedError()
	}
	return fmt.Sprintf(`Could not load configuration from %s: %v

Create the file with your Fitbit application credentials:
  {"clientID": "<client id>", "clientSecret": "<client secret>"}`, e.Path, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}

// AuthFailedError indicates the authorization round-trip did not yield a token.
type AuthFailedError struct {
	// Kind names the outcome, e.g. "state_mismatch" or "provider_error".
	Kind string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message.
func (e *AuthFailedError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("Authentication failed: %v", e.Reason)
	}
	return fmt.Sprintf("Authentication failed (%s): %v", e.Kind, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// FetchError indicates the time-series request failed.
type FetchError struct {
	// Resource is the API resource that was requested.
	Resource string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message, with a hint for API errors
// that have an obvious remedy.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("Failed to retrieve %s data: %v", e.Resource, e.Reason)

	var apiErr *fitbit.APIError
	if errors.As(e.Reason, &apiErr) {
		switch {
		case apiErr.IsRateLimited() && apiErr.RetryAfter > 0:
			msg += fmt.Sprintf("\n\nThe Fitbit rate limit was reached. Try again in %s.", apiErr.RetryAfter.Round(time.Second))
		case apiErr.IsRateLimited():
			msg += "\n\nThe Fitbit rate limit was reached. Try again later."
		case apiErr.IsUnauthorized():
			msg += "\n\nThe access token was rejected. Run the export again to re-authorize."
		}
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}

// WriteError indicates the output file could not be written.
type WriteError struct {
	// Path is the output file.
	Path string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message.
func (e *WriteError) Error() string {
	return fmt.Sprintf("Failed to write %s: %v", e.Path, e.Reason)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *WriteError) Is(target error) bool {
	_, ok := target.(*WriteError)
	return ok
}

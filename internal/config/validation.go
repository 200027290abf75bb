package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"fitexport/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.ClientID) == "" {
		errs.Add("clientID", "is required")
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		errs.Add("clientSecret", "is required")
	}

	if err := validateRedirectURI(cfg.RedirectURI); err != nil {
		errs.Add("redirectURI", err.Error(), cfg.RedirectURI)
	}

	for _, endpoint := range []struct {
		field string
		raw   string
	}{
		{"authorizeURL", cfg.AuthorizeURL},
		{"tokenURL", cfg.TokenURL},
		{"apiBaseURL", cfg.APIBaseURL},
	} {
		u, err := url.Parse(endpoint.raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add(endpoint.field, "must be an absolute URL", endpoint.raw)
		}
	}

	if cfg.CallbackTimeout < 0 {
		errs.Add("callbackTimeout", "must not be negative", cfg.CallbackTimeout.Std().String())
	}

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs.Add("logLevel", "must be one of debug, info, warn, error", cfg.LogLevel)
	}

	return errs
}

// validateRedirectURI requires a plain-HTTP loopback URL with an explicit port,
// since the callback receiver binds exactly that address.
func validateRedirectURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" {
		return fmt.Errorf("scheme must be http, got %q", u.Scheme)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return fmt.Errorf("must include an explicit port: %w", err)
	}
	if port == "0" {
		return fmt.Errorf("port must be fixed, it is registered with the provider")
	}
	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			return fmt.Errorf("host must be a loopback address, got %q", host)
		}
	}
	return nil
}

// BindAddress returns the host:port the callback receiver listens on.
func (c *Config) BindAddress() (string, error) {
	u, err := url.Parse(c.RedirectURI)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}

// CallbackPath returns the path component of the redirect URI, "/" when empty.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.RedirectURI)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

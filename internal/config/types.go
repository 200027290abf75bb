package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Credentials is the OAuth client registration for the Fitbit application.
type Credentials struct {
	ClientID     string `json:"clientID"`
	ClientSecret string `json:"clientSecret"`
	// RedirectURI must match the callback URL registered with Fitbit.
	RedirectURI string `json:"redirectURI,omitempty"`
}

// Endpoints overrides the Fitbit URLs. Empty values keep the defaults.
type Endpoints struct {
	AuthorizeURL string `json:"authorizeURL,omitempty"`
	TokenURL     string `json:"tokenURL,omitempty"`
	APIBaseURL   string `json:"apiBaseURL,omitempty"`
}

// Config is the content of the credentials file after defaults are applied.
type Config struct {
	Credentials
	Endpoints

	Scopes []string `json:"scopes,omitempty"`

	// CallbackTimeout bounds how long the callback receiver waits for the
	// browser redirect.
	CallbackTimeout Duration `json:"callbackTimeout,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`

	// path is where the configuration was read from.
	path string
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Duration is a time.Duration that reads and writes Go duration strings ("90s", "5m").
// Plain numbers are taken as seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

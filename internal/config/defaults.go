package config

import "time"

const (
	// DefaultFileName is the credentials file looked up in the working directory.
	DefaultFileName = ".fitbit"

	// EnvConfigPath overrides the credentials file location.
	EnvConfigPath = "FITEXPORT_CONFIG"

	// DefaultRedirectURI is where the local callback receiver listens.
	DefaultRedirectURI = "http://127.0.0.1:8080/"

	// DefaultCallbackTimeout is how long to wait for the browser redirect.
	DefaultCallbackTimeout = 10 * time.Minute

	DefaultAuthorizeURL = "https://www.fitbit.com/oauth2/authorize"
	DefaultTokenURL     = "https://api.fitbit.com/oauth2/token"
	DefaultAPIBaseURL   = "https://api.fitbit.com"

	DefaultLogLevel = "info"
)

// DefaultScopes is the scope set requested when the file does not name any.
var DefaultScopes = []string{
	"activity",
	"heartrate",
	"location",
	"nutrition",
	"profile",
	"settings",
	"sleep",
	"social",
	"weight",
}

// applyDefaults fills every optional field left empty by the file.
func applyDefaults(cfg *Config) {
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = append([]string(nil), DefaultScopes...)
	}
	if cfg.CallbackTimeout == 0 {
		cfg.CallbackTimeout = Duration(DefaultCallbackTimeout)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

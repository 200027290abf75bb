package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeFile(t, t.TempDir(), `{"clientID": "23ABCD", "clientSecret": "s3cret"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "23ABCD", cfg.ClientID)
	assert.Equal(t, "s3cret", cfg.ClientSecret)
	assert.Equal(t, DefaultRedirectURI, cfg.RedirectURI)
	assert.Equal(t, DefaultAuthorizeURL, cfg.AuthorizeURL)
	assert.Equal(t, DefaultTokenURL, cfg.TokenURL)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
	assert.Equal(t, DefaultCallbackTimeout, cfg.CallbackTimeout.Std())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, path, cfg.Path())
}

func TestLoad_Overrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), `{
		"clientID": "id",
		"clientSecret": "secret",
		"redirectURI": "http://localhost:9090/cb",
		"scopes": ["heartrate"],
		"callbackTimeout": "90s",
		"logLevel": "debug",
		"apiBaseURL": "http://127.0.0.1:1234"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090/cb", cfg.RedirectURI)
	assert.Equal(t, []string{"heartrate"}, cfg.Scopes)
	assert.Equal(t, 90*time.Second, cfg.CallbackTimeout.Std())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.APIBaseURL)

	addr, err := cfg.BindAddress()
	require.NoError(t, err)
	assert.Equal(t, "localhost:9090", addr)
	assert.Equal(t, "/cb", cfg.CallbackPath())
}

func TestLoad_YAMLAccepted(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clientID: id\nclientSecret: secret\ncallbackTimeout: 30\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.CallbackTimeout.Std())
	assert.Equal(t, "/", cfg.CallbackPath())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrorTypeIO, cfgErr.ErrorType)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, cfgErr.DetailedError(), "Suggestions:")
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"clientID": "id"`},
		{"unknown field", `{"clientID": "id", "clientSecret": "s", "clientSecrte": "typo"}`},
		{"bad duration", `{"clientID": "id", "clientSecret": "s", "callbackTimeout": "soon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.content)
			_, err := Load(path)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, ErrorTypeParse, cfgErr.ErrorType)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"empty document", ``, "clientID"},
		{"missing secret", `{"clientID": "id"}`, "clientSecret"},
		{"https redirect", `{"clientID": "id", "clientSecret": "s", "redirectURI": "https://127.0.0.1:8080/"}`, "redirectURI"},
		{"remote redirect", `{"clientID": "id", "clientSecret": "s", "redirectURI": "http://example.com:8080/"}`, "redirectURI"},
		{"no port", `{"clientID": "id", "clientSecret": "s", "redirectURI": "http://127.0.0.1/"}`, "redirectURI"},
		{"negative timeout", `{"clientID": "id", "clientSecret": "s", "callbackTimeout": "-1s"}`, "callbackTimeout"},
		{"bad level", `{"clientID": "id", "clientSecret": "s", "logLevel": "loud"}`, "logLevel"},
		{"relative token url", `{"clientID": "id", "clientSecret": "s", "tokenURL": "/token"}`, "tokenURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.content)
			_, err := Load(path)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, ErrorTypeValidation, cfgErr.ErrorType)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, filepath.Join("/work", DefaultFileName), ResolvePath("/work"))

	t.Setenv(EnvConfigPath, "/etc/fitexport.json")
	assert.Equal(t, "/etc/fitexport.json", ResolvePath("/work"))
}

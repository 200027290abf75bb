package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fitexport/pkg/logging"

	"sigs.k8s.io/yaml"
)

// ResolvePath returns the credentials file to read: $FITEXPORT_CONFIG when set,
// otherwise DefaultFileName inside dir.
func ResolvePath(dir string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(dir, DefaultFileName)
}

// Load reads, defaults and validates the credentials file at path.
// Every failure is returned as a *ConfigurationError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newConfigurationError(path, ErrorTypeIO, err,
				"credentials file not found",
				fmt.Sprintf("create %s with your Fitbit application's clientID and clientSecret", DefaultFileName),
				fmt.Sprintf("or point %s at an existing file", EnvConfigPath))
		}
		return nil, newConfigurationError(path, ErrorTypeIO, err, fmt.Sprintf("cannot read file: %v", err))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, newConfigurationError(path, ErrorTypeParse, err, err.Error(),
			`expected a JSON object such as {"clientID": "...", "clientSecret": "..."}`)
	}
	cfg.path = path

	if errs := Validate(cfg); errs.HasErrors() {
		return nil, newConfigurationError(path, ErrorTypeValidation, errs, errs.Error())
	}

	logging.Info("Config", "Loaded credentials for client %s from %s", cfg.ClientID, path)
	return cfg, nil
}

// Parse decodes a credentials document and applies defaults without validating it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed credentials: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

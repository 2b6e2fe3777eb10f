package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvModel selects the active ModelIdentifier.
	EnvModel = "MASON_MODEL"

	maxFileSize  = 200 * 1024
	maxTotalSize = 3 * maxFileSize
)

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Model: ModelConfig{
			Temperature: 0.2,
		},
		API: APIConfig{
			Retry: RetryConfig{
				MaxRetries:  3,
				RetryDelay:  1 * time.Second,
				HTTPTimeout: 120 * time.Second,
			},
		},
		Ingest: IngestConfig{
			MaxFileSize:  maxFileSize,
			MaxTotalSize: maxTotalSize,
			ExcludedDirs: []string{
				"__pycache__", ".git", "node_modules", "venv", "env",
				".vscode", ".idea", "dist", "build", "__mocks__",
				"coverage", ".pytest_cache", ".mypy_cache", "logs",
				"temp", "tmp", "secrets", "private", "cache", "addons",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  defaultLogPath(),
		},
	}
}

// Load reads the optional YAML config file and applies environment
// overrides. The model selection comes from MASON_MODEL unless the file
// already names one; the environment wins when both are set.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = defaultConfigPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if model := os.Getenv(EnvModel); model != "" {
		cfg.Model.Name = model
	}

	return cfg, nil
}

// Validate checks the model selection and its credentials against the
// registry. Errors here are startup-fatal.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return &ConfigurationError{
			Reason: fmt.Sprintf("no model selected: set %s to a provider/model-name identifier", EnvModel),
		}
	}

	id := ModelIdentifier(c.Model.Name)
	if _, _, err := ParseModelIdentifier(c.Model.Name); err != nil {
		return err
	}

	pc, ok := Lookup(id)
	if !ok {
		return &ConfigurationError{
			Reason: fmt.Sprintf("model %q not found in registry", c.Model.Name),
		}
	}

	if pc.RequiresAPIKey {
		if key := os.Getenv(pc.CredentialEnvVar); key == "" {
			return &ConfigurationError{
				Reason: fmt.Sprintf("model %q requires credential %s which is not set", c.Model.Name, pc.CredentialEnvVar),
			}
		}
	}

	return nil
}

func defaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "mason", "config.yaml")
}

// defaultLogPath places the log next to the config so a default run
// still records skipped directives and ingest rejections somewhere.
func defaultLogPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "mason", "mason.log")
}

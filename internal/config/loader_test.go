package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvModel, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Model.Name)
	assert.Equal(t, int64(200*1024), cfg.Ingest.MaxFileSize)
	assert.Equal(t, int64(600*1024), cfg.Ingest.MaxTotalSize)
	assert.True(t, cfg.Ingest.Excluded(".git"))
	assert.True(t, cfg.Ingest.Excluded("node_modules"))
	assert.False(t, cfg.Ingest.Excluded("src"))

	// A default run still logs to file.
	require.NotEmpty(t, cfg.Logging.File)
	assert.Equal(t, "mason.log", filepath.Base(cfg.Logging.File))
	assert.Equal(t, "mason", filepath.Base(filepath.Dir(cfg.Logging.File)))
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("model:\n  name: openai/gpt-4o\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv(EnvModel, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o", cfg.Model.Name)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Environment wins over the file.
	t.Setenv(EnvModel, "ollama/llama3.2")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama/llama3.2", cfg.Model.Name)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "no model selected",
			model:   "",
			wantErr: true,
		},
		{
			name:    "malformed identifier",
			model:   "gpt-4o",
			wantErr: true,
		},
		{
			name:    "not in registry",
			model:   "openai/gpt-99",
			wantErr: true,
		},
		{
			name:    "credential missing",
			model:   "openai/gpt-4o",
			env:     map[string]string{"OPENAI_API_KEY": ""},
			wantErr: true,
		},
		{
			name:  "credential present",
			model: "openai/gpt-4o",
			env:   map[string]string{"OPENAI_API_KEY": "sk-test"},
		},
		{
			name:  "local model needs no credential",
			model: "ollama/llama3.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := Defaults()
			cfg.Model.Name = tt.model

			err := cfg.Validate()
			if tt.wantErr {
				var cfgErr *ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

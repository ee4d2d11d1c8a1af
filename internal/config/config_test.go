package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"8080\"\n")

	var cfg Config
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Generation.MaxRetries)
	assert.Equal(t, 1000, cfg.Generation.RetryDelayMS)
	assert.Equal(t, 500, cfg.Generation.SuccessDelayMS)
	assert.Equal(t, "text-embedding-004", cfg.Embedding.Model)
	assert.Equal(t, "embedding-001", cfg.Embedding.FallbackModel)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "llm:\n  api_key: from-file\n")
	t.Setenv("STUDY_LLM_API_KEY", "from-env")

	var cfg Config
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "from-env", cfg.LLM.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	assert.Error(t, err)
}

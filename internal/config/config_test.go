package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(make([]byte, 32)))

	path := writeConfig(t, `
database:
  url: "postgres://localhost/app"
encryption:
  key: "${TEST_ENCRYPTION_KEY}"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.URL)

	key, err := cfg.SealingKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `database:
  url: "postgres://localhost/app"
`))
	require.NoError(t, err)

	assert.Equal(t, "https://mybusiness.googleapis.com/v4", cfg.Google.APIBaseURL)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Google.TokenURL)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "*/15 * * * *", cfg.Scheduler.Spec)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestSealingKeyErrors(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.SealingKey()
	assert.Error(t, err)

	cfg.Encryption.Key = "%%%not-base64%%%"
	_, err = cfg.SealingKey()
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

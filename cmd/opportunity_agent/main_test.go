package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	// Try to load .env file - ignore error if it doesn't exist (CI environment)
	_ = godotenv.Load()

	os.Exit(m.Run())
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	assert.Equal(t, "flag-key", resolveAPIKey("flag-key"))
	assert.Equal(t, "env-key", resolveAPIKey(""))
}

func TestResolveConfig_NoFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/tracker")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/tracker", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestResolveConfig_FileWinsOverEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/tracker")
	t.Setenv("GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9090, "database_url": "postgres://file/tracker"}`), 0o644))

	cfg, err := resolveConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://file/tracker", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestResolveConfig_InvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 70000}`), 0o644))

	_, err := resolveConfig(path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(false)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger, err = newLogger(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

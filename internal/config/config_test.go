package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 15*time.Second, cfg.API.RefreshTimeout)
	assert.Equal(t, filepath.Join(home, ".adminctl", "session.db"), cfg.Session.Path)
	assert.Equal(t, "admin-exports", cfg.Export.KeyPrefix)
	assert.Equal(t, 15*time.Minute, cfg.Sandbox.AccessTTL)
	assert.False(t, cfg.Sandbox.Seed)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ADMIN_API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("ADMIN_API_REFRESH_TIMEOUT", "3s")
	t.Setenv("ADMIN_SANDBOX_SEED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.RefreshTimeout)
	assert.True(t, cfg.Sandbox.Seed)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ADMIN_LOG_LEVEL", "warn")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"# local overrides\nADMIN_LOG_LEVEL=debug\nADMIN_EXPORT_BUCKET='exports'\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ADMIN_EXPORT_BUCKET") })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "exports", cfg.Export.Bucket)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "admin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api:\n  base_url: http://sandbox:4000/api\nsandbox:\n  access_ttl: 30s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://sandbox:4000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Sandbox.AccessTTL)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

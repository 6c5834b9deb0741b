package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 12.0, cfg.Field.Gap)
	assert.Equal(t, 0.8, cfg.Field.SpeedScale)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Oracle.Model)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 25*time.Minute, cfg.Ritual.Work)
	assert.Equal(t, 5*time.Minute, cfg.Ritual.Break)
	assert.Equal(t, 20, cfg.Ritual.RewardXP)
	assert.Equal(t, 2500*time.Millisecond, cfg.Session.LevelUpFlash)
	assert.True(t, cfg.Haptics.Enabled)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("field:\n  gap: 16\nritual:\n  work: 50m\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16.0, cfg.Field.Gap)
	assert.Equal(t, 50*time.Minute, cfg.Ritual.Work)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2.0, cfg.Field.Radius)
	assert.Equal(t, 5*time.Minute, cfg.Ritual.Break)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("field:\n  gap: 0\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Oracle.Model = "gemini-custom"
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestAPIKeyEnv(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "fallback")
	o := OracleConfig{APIKeyEnv: "API_KEY"}
	assert.Equal(t, "fallback", o.APIKey())

	t.Setenv("API_KEY", "primary")
	assert.Equal(t, "primary", o.APIKey())
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.Storage.Path = "/tmp/x.db"
	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", p)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 120, cfg.APITimeout)
	assert.Equal(t, 6, cfg.CtxTurns)
	assert.Equal(t, "origin", cfg.Remote)
	assert.False(t, cfg.CreatePR)
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("model: claude-3-opus\nctx_turns: 9\n"), 0o644))
	t.Setenv("REVIEW_CONFIG", configPath)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus", cfg.Model)
	assert.Equal(t, 9, cfg.CtxTurns)
}

func TestLoad_EnvOverridesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("model: claude-3-opus\n"), 0o644))
	t.Setenv("REVIEW_CONFIG", configPath)
	t.Setenv("MODEL", "claude-3-haiku")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku", cfg.Model)
}

func TestLoad_FlagOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("model: claude-3-opus\n"), 0o644))
	t.Setenv("REVIEW_CONFIG", configPath)
	t.Setenv("MODEL", "claude-3-haiku")

	cfg, err := Load(&Config{Model: "claude-3-5-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet", cfg.Model)
}

func TestLoad_CreatePRSetDistinguishesExplicitFalse(t *testing.T) {
	t.Setenv("REVIEW_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("CREATE_PR", "true")

	cfg, err := Load(&Config{CreatePR: false, CreatePRSet: true})
	require.NoError(t, err)
	assert.False(t, cfg.CreatePR) // explicit flag override wins even though it's the zero value
}

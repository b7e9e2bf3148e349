package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWithNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().StackableLimit, cfg.StackableLimit)
}

func TestLoadMergesProjectFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, fileName), []byte("stackable_limit: 250\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.StackableLimit)
	assert.Equal(t, Default().SpatialmatchStackLimit, cfg.SpatialmatchStackLimit)
}

func TestEnvOverridesBeatProjectFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, fileName), []byte("stackable_limit: 250\n"), 0o644)
	require.NoError(t, err)

	t.Setenv("SPATIALMATCH_STACKABLE_LIMIT", "9")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.StackableLimit)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

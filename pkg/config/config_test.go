package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 200, cfg.Search.TrieCap)
	assert.Equal(t, 50, cfg.Search.ChunkSize)
	assert.Equal(t, 0.5, cfg.Search.TableRemarksWeight)
	assert.Equal(t, 0.8, cfg.Search.ColumnRemarksWeight)
	assert.Equal(t, 128, cfg.Server.MaxQueryLen)
	assert.Equal(t, "tables", cfg.CLI.DefaultMode)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Search.TrieCap = 64
	cfg.Search.ColumnRemarksWeight = 0.9
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, loaded.Search.TrieCap)
	assert.Equal(t, 0.9, loaded.Search.ColumnRemarksWeight)
	// Untouched fields keep their defaults.
	assert.Equal(t, 50, loaded.Search.ChunkSize)
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[search]\ntrie_cap = 99\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Search.TrieCap)
	assert.Equal(t, 50, cfg.Search.ChunkSize)
}

func TestLoadConfigBadFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("{not toml"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Search.TrieCap, cfg.Search.TrieCap)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCHEMASERVE_TRIE_CAP", "33")
	t.Setenv("SCHEMASERVE_TABLE_REMARKS_WEIGHT", "0.7")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 33, cfg.Search.TrieCap)
	assert.Equal(t, 0.7, cfg.Search.TableRemarksWeight)
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Search.TrieCap)
	assert.FileExists(t, path)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Pipeline.SessionSplitMinutes)
	assert.Equal(t, 15*time.Minute, cfg.Pipeline.SessionSplit())
	assert.Equal(t, 4095, cfg.Pipeline.ChunkSize)
	assert.Equal(t, "export", cfg.Export.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
pipeline:
  session_split_minutes: 30
  chunk_size: 1000
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Pipeline.SessionSplitMinutes)
	assert.Equal(t, 1000, cfg.Pipeline.ChunkSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched values keep defaults.
	assert.Equal(t, "export", cfg.Export.Dir)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FITBRIDGE_PIPELINE_CHUNK_SIZE", "512")
	t.Setenv("FITBRIDGE_LOGGING_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Pipeline.ChunkSize)
	assert.Equal(t, "json", cfg.Logging.Format)
}

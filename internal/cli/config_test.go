package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `sqlite_path: /data/app.db
mongo_database: production
batch_size: 500
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/app.db", cfg.SQLitePath)
	assert.Equal(t, "production", cfg.MongoDatabase)
	assert.Equal(t, int32(500), cfg.BatchSize)
	// Unset fields keep defaults.
	assert.Equal(t, DefaultConfig().MongoURI, cfg.MongoURI)
}

func TestLoadConfig_MissingFileFails(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sqlite_path: [\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
endpoint: http://example.com/action
token: file-token
default_category: 3
db_path: /tmp/quill.db
`))
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/action", cfg.Endpoint)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, int64(3), cfg.DefaultCategory)
	assert.Equal(t, "/tmp/quill.db", cfg.DBPath)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("endpoint: http://e.com\nendpiont: typo\n"))
	require.Error(t, err)
}

func TestParseRequiresEndpoint(t *testing.T) {
	_, err := Parse([]byte("token: x\n"))
	require.ErrorContains(t, err, "endpoint is required")
}

func TestParseEnvTokenWins(t *testing.T) {
	t.Setenv("QUILL_TOKEN", "env-token")

	cfg, err := Parse([]byte("endpoint: http://e.com\ntoken: file-token\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadDefaultsDBPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: http://e.com\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quill.db"), cfg.DBPath)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

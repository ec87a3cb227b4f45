package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitter-dev/splitter/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Storage = StorageConfig{Backend: BackendSQLite, Path: "trip.db"}
	cfg.GeneralTag = "Everyone"
	cfg.Tags = []model.TagOption{
		{Name: "Everyone", ForItems: true},
		{Name: "Kids", ForUsers: true, ForItems: true},
	}

	path := filepath.Join(t.TempDir(), "splitter.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Storage, got.Storage)
	assert.Equal(t, "Everyone", got.GeneralTag)
	assert.Equal(t, cfg.Tags, got.Tags)
	assert.Equal(t, ":8080", got.Server.Addr)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.Path)
	assert.Empty(t, cfg.Storage.DSN)
	assert.Equal(t, model.DefaultGeneralTag, cfg.GeneralTag)
	assert.Equal(t, model.DefaultTags(), cfg.Tags)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: file\n  path: elsewhere\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Storage.Path)
	assert.Equal(t, model.DefaultGeneralTag, cfg.GeneralTag)
	assert.Equal(t, model.DefaultTags(), cfg.Tags)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"file", "storage:\n  backend: file\n  path: data\n", ""},
		{"unknown backend", "storage:\n  backend: redis\n", "unknown storage backend"},
		{"postgres without dsn", "storage:\n  backend: postgres\n", "storage.dsn"},
		{"sqlite without path", "storage:\n  backend: sqlite\n  path: \"\"\n", "storage.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "splitter.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			cfg, err := Load(path)
			require.NoError(t, err)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SPLITTER_STORAGE_BACKEND", "postgres")
	t.Setenv("SPLITTER_STORAGE_PATH", "")
	t.Setenv("SPLITTER_DSN", "postgres://localhost/splitter")
	t.Setenv("SPLITTER_ADDR", "127.0.0.1:9000")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.Path)
	assert.Equal(t, "postgres://localhost/splitter", cfg.Storage.DSN)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "splitter.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "backend: file")
	assert.Contains(t, contents, "general_tag: General")
	assert.Contains(t, contents, "for_users: true")
	assert.Contains(t, contents, "addr:")
}

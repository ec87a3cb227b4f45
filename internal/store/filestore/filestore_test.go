package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitter-dev/splitter/internal/store"
)

func TestLoadMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	data, err := s.Load(context.Background(), store.KeyUsers)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, store.KeyExpenses, []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Save(ctx, store.KeyExpenses, []byte(`[]`)))

	data, err := s.Load(ctx, store.KeyExpenses)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	onDisk, err := os.ReadFile(filepath.Join(dir, "expenses.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(onDisk))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
}

func TestInvalidKey(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../users", "Users", "a/b"} {
		assert.Error(t, s.Save(ctx, key, []byte("[]")), "key %q", key)
		_, err := s.Load(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

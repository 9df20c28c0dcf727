package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	r, err := NewRedis(context.Background(), mr.Addr(), "bankop:")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return r, mr
}

func TestStorageImplementations(t *testing.T) {
	fileStore, err := NewFile(filepath.Join(t.TempDir(), "nested", "storage.json"))
	require.NoError(t, err)

	redisStore, _ := setupRedis(t)

	stores := map[string]Storage{
		"memory": NewMemory(),
		"file":   fileStore,
		"redis":  redisStore,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, KeyAccessToken, "tok"))
			require.NoError(t, s.Set(ctx, KeyUserName, "Ana"))

			v, ok, err := s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok", v)

			require.NoError(t, s.Delete(ctx, KeyAccessToken))
			require.NoError(t, s.Delete(ctx, KeyAccessToken))

			_, ok, err = s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = s.Get(ctx, KeyUserName)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Ana", v)
		})
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	ctx := context.Background()

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyToast, `{"description":"ok"}`))

	second, err := NewFile(path)
	require.NoError(t, err)

	v, ok, err := second.Get(ctx, KeyToast)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"description":"ok"}`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_CorruptedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFile(path)
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), KeyAccessToken)
	assert.Error(t, err)
}

func TestRedis_UsesPrefix(t *testing.T) {
	r, mr := setupRedis(t)

	require.NoError(t, r.Set(context.Background(), KeyUserEmail, "user@example.com"))

	v, err := mr.Get("bankop:" + KeyUserEmail)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", v)
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedis(context.Background(), addr, "")
	assert.Error(t, err)
}

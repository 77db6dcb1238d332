package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mlpipe/domain/core"
	"mlpipe/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "model-bucket")
	require.NoError(t, err)
	return store
}

func TestLocalStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "model-registry/model.json", []byte(`{"w":[1]}`)))

	data, err := store.Get(ctx, "model-registry/model.json")
	require.NoError(t, err)
	assert.Equal(t, `{"w":[1]}`, string(data))

	// overwrite
	require.NoError(t, store.Put(ctx, "model-registry/model.json", []byte(`{}`)))
	data, err = store.Get(ctx, "model-registry/model.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestLocalStore_GetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrObjectNotFound)
	assert.True(t, core.IsNotFoundError(err))
}

func TestLocalStore_ExistsIsPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Put(ctx, "artifact/latest/data_ingestion/data.csv", []byte("a\n")))

	tests := []struct {
		prefix string
		want   bool
	}{
		{"artifact/latest/data_ingestion/data.csv", true},
		{"artifact/latest/", true},
		{"artifact/latest/model_trainer", false},
		{"model-registry/model.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			ok, err := store.Exists(ctx, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestLocalStore_PutFileAndDownload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(src, []byte{1, 2, 3}, 0644))
	require.NoError(t, store.PutFile(ctx, "a/b.bin", src))

	dst := filepath.Join(dir, "nested", "out.bin")
	require.NoError(t, store.Download(ctx, "a/b.bin", dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	keys, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.bin"}, keys)
}

func TestNewStore_Local(t *testing.T) {
	store, err := NewStore(context.Background(), config.StoreConfig{
		Backend:  config.StoreLocal,
		Bucket:   "bucket",
		LocalDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, "local", store.Provider())
	assert.Equal(t, "bucket", store.Bucket())

	_, err = NewStore(context.Background(), config.StoreConfig{Backend: "ftp"})
	assert.Error(t, err)
}

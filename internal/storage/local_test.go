package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matreshka-feed/internal/domain"
)

func newLocal(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestLocalStore_PutGet(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	data := []byte("jpeg bytes")
	ref, err := store.Put(ctx, "20250901_120000_abc.jpg", data, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "20250901_120000_abc.jpg", ref)

	reader, err := store.Get(ctx, ref)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStore_ThumbSubdir(t *testing.T) {
	store, dir := newLocal(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, "thumbs/a.jpg", []byte("thumb"), "image/jpeg")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "thumbs", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/thumbs/a.jpg", store.URL(ref))
}

func TestLocalStore_GetMissing(t *testing.T) {
	store, _ := newLocal(t)

	_, err := store.Get(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestLocalStore_DeleteIdempotent(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, "a.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	// Deleting an already-absent blob is not an error.
	require.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStore_RejectsEscapingRefs(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "../secrets.txt")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)

	_, err = store.Get(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matreshka-feed/internal/domain"
)

func newFileRepo(t *testing.T) (*FilePhotoRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo_database.json")
	repo, err := NewFilePhotoRepository(path)
	require.NoError(t, err)
	return repo, path
}

func testPhoto(uploadedAt time.Time) *domain.Photo {
	return &domain.Photo{
		ID:         uuid.New(),
		Owner:      "@traveler",
		FileName:   "20250901_120000_abc.jpg",
		ThumbName:  "thumbs/20250901_120000_abc.jpg",
		Width:      1920,
		Height:     1080,
		SizeBytes:  123456,
		UploadedAt: uploadedAt,
	}
}

func TestFileRepo_CreateAndGet(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	photo := testPhoto(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, photo))

	t.Run("Found", func(t *testing.T) {
		got, err := repo.GetByID(ctx, photo.ID)
		require.NoError(t, err)
		assert.Equal(t, photo.ID, got.ID)
		assert.Equal(t, photo.FileName, got.FileName)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := repo.Create(ctx, photo)
		assert.ErrorIs(t, err, domain.ErrDuplicatePhoto)
	})
}

func TestFileRepo_Delete(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	photo := testPhoto(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, photo))

	require.NoError(t, repo.Delete(ctx, photo.ID))

	_, err := repo.GetByID(ctx, photo.ID)
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, photo.ID), domain.ErrPhotoNotFound)
}

func TestFileRepo_PersistsAcrossReopen(t *testing.T) {
	repo, path := newFileRepo(t)
	ctx := context.Background()

	photo := testPhoto(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, photo))

	reopened, err := NewFilePhotoRepository(path)
	require.NoError(t, err)

	got, err := reopened.GetByID(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, got.ID)
}

// The sidecar document must stay a flat {"photos": [...]} array whose
// objects carry at least id, filename, uploaded_at and size, for
// compatibility with existing deployments.
func TestFileRepo_DocumentShape(t *testing.T) {
	repo, path := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testPhoto(time.Now().UTC())))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "photos")

	var photos []map[string]any
	require.NoError(t, json.Unmarshal(doc["photos"], &photos))
	require.Len(t, photos, 1)

	for _, key := range []string{"id", "filename", "uploaded_at", "size"} {
		assert.Contains(t, photos[0], key)
	}
}

func TestFileRepo_ListPagination(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	const n = 25
	for i := 0; i < n; i++ {
		// Duplicate timestamps on purpose: ordering must still be
		// total via the id tie-break.
		photo := testPhoto(base.Add(time.Duration(i/2) * time.Minute))
		require.NoError(t, repo.Create(ctx, photo))
	}

	t.Run("Newest First", func(t *testing.T) {
		photos, total, err := repo.List(ctx, domain.PageParams{Limit: n, Offset: 0})
		require.NoError(t, err)
		assert.Equal(t, int64(n), total)
		require.Len(t, photos, n)
		for i := 1; i < len(photos); i++ {
			assert.False(t, photos[i].UploadedAt.After(photos[i-1].UploadedAt))
		}
	})

	t.Run("Windows Cover Without Gaps Or Duplicates", func(t *testing.T) {
		seen := map[uuid.UUID]bool{}
		for offset := 0; ; offset += 10 {
			photos, _, err := repo.List(ctx, domain.PageParams{Limit: 10, Offset: offset})
			require.NoError(t, err)
			if len(photos) == 0 {
				break
			}
			for _, p := range photos {
				assert.False(t, seen[p.ID], "photo %s returned twice", p.ID)
				seen[p.ID] = true
			}
		}
		assert.Len(t, seen, n)
	})

	t.Run("Offset Past End", func(t *testing.T) {
		photos, total, err := repo.List(ctx, domain.PageParams{Limit: 10, Offset: 1000})
		require.NoError(t, err)
		assert.Equal(t, int64(n), total)
		assert.Empty(t, photos)
	})
}

// Concurrent creates must not lose updates: the mutex serializes the
// document's read-modify-write cycle.
func TestFileRepo_ConcurrentCreates(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	const writers = 30
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, testPhoto(time.Now().UTC()))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), count)
}

func TestFileRepo_Aggregates(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	owners := []string{"@a", "@a", "@b", ""}
	for _, owner := range owners {
		photo := testPhoto(now)
		photo.Owner = owner
		photo.SizeBytes = 100
		require.NoError(t, repo.Create(ctx, photo))
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	distinct, err := repo.DistinctOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), distinct)

	size, err := repo.TotalSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(400), size)
}

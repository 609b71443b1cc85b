package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"matreshka-feed/internal/domain"
)

// photoDocument is the on-disk shape of the whole-document store:
// a flat array under "photos", one object per record.
type photoDocument struct {
	Photos []domain.Photo `json:"photos"`
}

// FilePhotoRepository persists the entire feed as one JSON document.
// Every mutation is a full load-mutate-save cycle under mu; without
// that lock two concurrent uploads would each read the document,
// append in memory, and the second save would drop the first append.
// The lock is process-wide only: running two server processes against
// the same file is not supported.
type FilePhotoRepository struct {
	mu   sync.Mutex
	path string
}

func NewFilePhotoRepository(path string) (*FilePhotoRepository, error) {
	r := &FilePhotoRepository{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.save(&photoDocument{Photos: []domain.Photo{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FilePhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	for i := range doc.Photos {
		if doc.Photos[i].ID == photo.ID {
			return domain.ErrDuplicatePhoto
		}
	}
	doc.Photos = append(doc.Photos, *photo)
	return r.save(doc)
}

func (r *FilePhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Photos {
		if doc.Photos[i].ID == id {
			photo := doc.Photos[i]
			return &photo, nil
		}
	}
	return nil, domain.ErrPhotoNotFound
}

func (r *FilePhotoRepository) List(ctx context.Context, params domain.PageParams) ([]domain.Photo, int64, error) {
	params.Validate()

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, 0, err
	}

	photos := make([]domain.Photo, len(doc.Photos))
	copy(photos, doc.Photos)

	// Newest first; ties on upload time break on descending id so
	// consecutive windows never overlap or gap.
	sort.SliceStable(photos, func(i, j int) bool {
		if !photos[i].UploadedAt.Equal(photos[j].UploadedAt) {
			return photos[i].UploadedAt.After(photos[j].UploadedAt)
		}
		return strings.Compare(photos[i].ID.String(), photos[j].ID.String()) > 0
	})

	total := int64(len(photos))
	if params.Offset >= len(photos) {
		return []domain.Photo{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(photos) {
		end = len(photos)
	}
	return photos[params.Offset:end], total, nil
}

func (r *FilePhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	for i := range doc.Photos {
		if doc.Photos[i].ID == id {
			doc.Photos = append(doc.Photos[:i], doc.Photos[i+1:]...)
			return r.save(doc)
		}
	}
	return domain.ErrPhotoNotFound
}

func (r *FilePhotoRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(doc.Photos)), nil
}

func (r *FilePhotoRepository) DistinctOwners(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return 0, err
	}
	owners := map[string]struct{}{}
	for i := range doc.Photos {
		if doc.Photos[i].Owner != "" {
			owners[doc.Photos[i].Owner] = struct{}{}
		}
	}
	return int64(len(owners)), nil
}

func (r *FilePhotoRepository) TotalSize(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range doc.Photos {
		total += doc.Photos[i].SizeBytes
	}
	return total, nil
}

func (r *FilePhotoRepository) Ping(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.load()
	return err
}

func (r *FilePhotoRepository) load() (*photoDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &photoDocument{Photos: []domain.Photo{}}, nil
		}
		return nil, err
	}
	var doc photoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Photos == nil {
		doc.Photos = []domain.Photo{}
	}
	return &doc, nil
}

func (r *FilePhotoRepository) save(doc *photoDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return err
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o640); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

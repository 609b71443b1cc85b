package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"matreshka-feed/internal/domain"
	"matreshka-feed/internal/imaging"
	"matreshka-feed/internal/repository"
	"matreshka-feed/internal/storage"
)

const statsCacheKey = "feed:stats"

type PhotoService interface {
	Upload(ctx context.Context, input domain.UploadInput) (*domain.Photo, error)
	UploadBatch(ctx context.Context, inputs []domain.UploadInput) (*domain.BatchResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error)
	List(ctx context.Context, params domain.PageParams) ([]domain.Photo, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*domain.FeedStats, error)
	// OpenBlob streams stored image bytes for the local backend's
	// /uploads route.
	OpenBlob(ctx context.Context, ref string) (io.ReadCloser, error)
	Health(ctx context.Context) error
}

type photoService struct {
	photos     repository.PhotoRepository
	blobs      storage.BlobStore
	normalizer *imaging.Normalizer
	analytics  AnalyticsService
	redis      *redis.Client
}

func NewPhotoService(photos repository.PhotoRepository, blobs storage.BlobStore, normalizer *imaging.Normalizer, analytics AnalyticsService, rdb *redis.Client) PhotoService {
	return &photoService{
		photos:     photos,
		blobs:      blobs,
		normalizer: normalizer,
		analytics:  analytics,
		redis:      rdb,
	}
}

// Upload runs the ingestion pipeline: validate, normalize, write the
// blobs, then the metadata record. The order matters: the blob is
// committed before the record so a crash in between leaves an orphaned
// file, never a record pointing at nothing. If the metadata insert
// fails the blobs are cleaned up best effort and the upload fails
// either way.
func (s *photoService) Upload(ctx context.Context, input domain.UploadInput) (*domain.Photo, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return nil, domain.Validationf("no file name provided")
	}
	if !imaging.AllowedFile(input.FileName) {
		return nil, domain.Validationf("file type not allowed: %s", input.FileName)
	}

	result, err := s.normalizer.Normalize(input.Data)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	now := time.Now().UTC()
	name := storageName(now, id)

	primaryRef, err := s.blobs.Put(ctx, name, result.Primary, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	thumbRef, err := s.blobs.Put(ctx, "thumbs/"+name, result.Thumbnail, "image/jpeg")
	if err != nil {
		if cleanupErr := s.blobs.Delete(ctx, primaryRef); cleanupErr != nil {
			log.Printf("Warning: failed to clean up blob %s: %v", primaryRef, cleanupErr)
		}
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	photo := &domain.Photo{
		ID:               id,
		Owner:            input.Owner,
		Category:         input.Category,
		Description:      input.Description,
		FileName:         primaryRef,
		ThumbName:        thumbRef,
		OriginalFileName: input.FileName,
		Width:            result.Width,
		Height:           result.Height,
		OriginalWidth:    result.OriginalWidth,
		OriginalHeight:   result.OriginalHeight,
		SizeBytes:        int64(len(result.Primary)),
		UploadedAt:       now,
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		for _, ref := range []string{primaryRef, thumbRef} {
			if cleanupErr := s.blobs.Delete(ctx, ref); cleanupErr != nil {
				log.Printf("Warning: failed to clean up blob %s: %v", ref, cleanupErr)
			}
		}
		return nil, err
	}

	s.invalidateStats(ctx)
	s.annotate(photo)

	if s.analytics != nil {
		s.analytics.NotifyUpload(photo)
	}

	return photo, nil
}

// UploadBatch applies Upload to each item independently. One bad file
// does not abort its siblings; failures are counted and reported.
func (s *photoService) UploadBatch(ctx context.Context, inputs []domain.UploadInput) (*domain.BatchResult, error) {
	if len(inputs) == 0 {
		return nil, domain.Validationf("no photos provided")
	}

	result := &domain.BatchResult{Photos: []domain.Photo{}}
	for _, input := range inputs {
		photo, err := s.Upload(ctx, input)
		if err != nil {
			log.Printf("Batch upload: %s failed: %v", input.FileName, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", input.FileName, err))
			continue
		}
		result.Uploaded++
		result.Photos = append(result.Photos, *photo)
	}
	return result, nil
}

func (s *photoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.annotate(photo)
	return photo, nil
}

func (s *photoService) List(ctx context.Context, params domain.PageParams) ([]domain.Photo, int64, error) {
	photos, total, err := s.photos.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	for i := range photos {
		s.annotate(&photos[i])
	}
	return photos, total, nil
}

// Delete removes the blobs best effort before the record: a blob that
// is already gone (manual removal, earlier crash) must not keep the
// record undeletable.
func (s *photoService) Delete(ctx context.Context, id uuid.UUID) error {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, ref := range []string{photo.FileName, photo.ThumbName} {
		if ref == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, ref); err != nil {
			log.Printf("Warning: failed to delete blob %s: %v", ref, err)
		}
	}

	if err := s.photos.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateStats(ctx)
	return nil
}

func (s *photoService) Stats(ctx context.Context) (*domain.FeedStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats domain.FeedStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	total, err := s.photos.Count(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := s.photos.DistinctOwners(ctx)
	if err != nil {
		return nil, err
	}
	size, err := s.photos.TotalSize(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.FeedStats{
		TotalPhotos:    total,
		DistinctOwners: owners,
		TotalSizeBytes: size,
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, statsCacheKey, encoded, time.Minute).Err()
		}
	}
	return stats, nil
}

func (s *photoService) OpenBlob(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.blobs.Get(ctx, ref)
}

func (s *photoService) Health(ctx context.Context) error {
	if err := s.photos.Ping(ctx); err != nil {
		return fmt.Errorf("metadata store: %w", err)
	}
	if err := s.blobs.Ping(ctx); err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	return nil
}

func (s *photoService) annotate(photo *domain.Photo) {
	photo.URL = s.blobs.URL(photo.FileName)
	if photo.ThumbName != "" {
		photo.ThumbnailURL = s.blobs.URL(photo.ThumbName)
	}
}

func (s *photoService) invalidateStats(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, statsCacheKey).Err()
	}
}

// storageName builds the timestamp-prefixed blob name. All stored
// images are JPEG after normalization regardless of the source format.
func storageName(t time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s_%s.jpg", t.Format("20060102_150405"), strings.ReplaceAll(id.String(), "-", ""))
}

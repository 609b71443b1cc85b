package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"matreshka-feed/internal/domain"
)

type photoPostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresPhotoRepository returns the hosted-backend metadata store
// over the photos table.
func NewPostgresPhotoRepository(db *sqlx.DB) PhotoRepository {
	return &photoPostgresRepository{db: db}
}

func (r *photoPostgresRepository) Create(ctx context.Context, photo *domain.Photo) error {
	query := `
		INSERT INTO photos (photo_id, owner, category, description, file_name, thumb_name,
			original_file_name, width, height, original_width, original_height, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.Owner, photo.Category, photo.Description,
		photo.FileName, photo.ThumbName, photo.OriginalFileName,
		photo.Width, photo.Height, photo.OriginalWidth, photo.OriginalHeight,
		photo.SizeBytes, photo.UploadedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return domain.ErrDuplicatePhoto
	}
	return err
}

func (r *photoPostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	var photo domain.Photo
	query := `SELECT * FROM photos WHERE photo_id = $1`
	err := r.db.GetContext(ctx, &photo, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *photoPostgresRepository) List(ctx context.Context, params domain.PageParams) ([]domain.Photo, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM photos`); err != nil {
		return nil, 0, err
	}

	photos := []domain.Photo{}
	query := `
		SELECT * FROM photos
		ORDER BY uploaded_at DESC, photo_id DESC
		LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &photos, query, params.Limit, params.Offset)
	return photos, total, err
}

func (r *photoPostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE photo_id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPhotoNotFound
	}
	return nil
}

func (r *photoPostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM photos`)
	return count, err
}

func (r *photoPostgresRepository) DistinctOwners(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(DISTINCT owner) FROM photos WHERE owner <> ''`)
	return count, err
}

func (r *photoPostgresRepository) TotalSize(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(size_bytes), 0) FROM photos`)
	return total, err
}

func (r *photoPostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

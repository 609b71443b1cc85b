// Package repository is the metadata store: a mapping from photo id to
// record with newest-first pagination, behind one contract with two
// backends. The Postgres backend serves the hosted deployment; the
// file backend persists the whole feed as a single JSON document and
// serializes every mutation.
package repository

import (
	"context"

	"github.com/google/uuid"

	"matreshka-feed/internal/domain"
)

type PhotoRepository interface {
	// Create appends a record; domain.ErrDuplicatePhoto if the id is
	// already present.
	Create(ctx context.Context, photo *domain.Photo) error
	// GetByID returns the record or domain.ErrPhotoNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error)
	// List returns a window over the feed ordered by upload time
	// descending, plus the total count. A window past the end is
	// empty, not an error.
	List(ctx context.Context, params domain.PageParams) ([]domain.Photo, int64, error)
	// Delete removes the record; domain.ErrPhotoNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int64, error)
	DistinctOwners(ctx context.Context) (int64, error)
	TotalSize(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

// UserRepository caches Telegram accounts. Hosted backend only; the
// local deployment runs without one.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

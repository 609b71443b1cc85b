// Package app builds the backend-specific dependency set shared by the
// API server and the bot.
package app

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"matreshka-feed/internal/config"
	"matreshka-feed/internal/repository"
	"matreshka-feed/internal/storage"
)

// Deps is everything the service layer needs, constructed once at
// process start and held for the process lifetime.
type Deps struct {
	Photos repository.PhotoRepository
	Users  repository.UserRepository
	Blobs  storage.BlobStore
	Redis  *redis.Client

	closers []func() error
}

// Build wires the stores for the configured backend. The local
// backend has no user table and no cache; the hosted one gets
// Postgres, MinIO and an optional Redis stats cache.
func Build(cfg *config.Config) (*Deps, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal:
		return buildLocal(cfg)
	case config.BackendHosted:
		return buildHosted(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func buildLocal(cfg *config.Config) (*Deps, error) {
	blobs, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init data dir: %w", err)
	}

	photos, err := repository.NewFilePhotoRepository(cfg.MetadataFile)
	if err != nil {
		return nil, fmt.Errorf("init metadata file: %w", err)
	}

	return &Deps{Photos: photos, Blobs: blobs}, nil
}

func buildHosted(cfg *config.Config) (*Deps, error) {
	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect MinIO: %w", err)
	}

	deps := &Deps{
		Photos:  repository.NewPostgresPhotoRepository(db),
		Users:   repository.NewPostgresUserRepository(db),
		Blobs:   storage.NewMinioStore(minioClient, cfg.MinIOBucket, cfg.MinIOPublicEndpoint, cfg.MinIOPublicUseSSL),
		closers: []func() error{db.Close},
	}

	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: failed to connect to Redis: %v (stats caching disabled)", err)
		} else {
			deps.Redis = rdb
			deps.closers = append(deps.closers, rdb.Close)
		}
	}

	return deps, nil
}

func (d *Deps) Close() {
	for _, close := range d.closers {
		if err := close(); err != nil {
			log.Printf("Warning: close failed: %v", err)
		}
	}
}

package service

import (
	"github.com/redis/go-redis/v9"

	"matreshka-feed/internal/config"
	"matreshka-feed/internal/imaging"
	"matreshka-feed/internal/repository"
	"matreshka-feed/internal/storage"
)

type Services struct {
	Photo     PhotoService
	User      UserService
	Analytics AnalyticsService
}

func NewServices(photos repository.PhotoRepository, users repository.UserRepository, blobs storage.BlobStore, rdb *redis.Client, cfg *config.Config) *Services {
	normalizer := imaging.New(cfg.MaxWidth, cfg.MaxHeight, cfg.ThumbSize, cfg.JPEGQuality, cfg.MaxUploadBytes)
	analytics := NewAnalyticsService(cfg.AnalyticsBotToken, cfg.AnalyticsChatID)

	return &Services{
		Photo:     NewPhotoService(photos, blobs, normalizer, analytics, rdb),
		User:      NewUserService(users),
		Analytics: analytics,
	}
}

package handler

import (
	"matreshka-feed/internal/config"
	"matreshka-feed/internal/service"
)

type Handlers struct {
	Photo *PhotoHandler
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Photo: NewPhotoHandler(services.Photo, cfg),
	}
}

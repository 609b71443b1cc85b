package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"matreshka-feed/internal/app"
	"matreshka-feed/internal/config"
	"matreshka-feed/internal/handler"
	"matreshka-feed/internal/middleware"
	"matreshka-feed/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	deps, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build storage backend: %v", err)
	}
	defer deps.Close()

	services := service.NewServices(deps.Photos, deps.Users, deps.Blobs, deps.Redis, cfg)
	handlers := handler.NewHandlers(services, cfg)

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		// Room for the largest accepted upload plus multipart framing.
		BodyLimit: int(cfg.MaxUploadBytes) + 1024*1024,
	})

	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	setupRoutes(fiberApp, handlers, cfg)

	log.Printf("Feed server starting on port %s (backend: %s)", cfg.Port, cfg.StorageBackend)
	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(fiberApp *fiber.App, h *handler.Handlers, cfg *config.Config) {
	fiberApp.Get("/health", h.Photo.Health)

	api := fiberApp.Group("/api")
	api.Get("/health", h.Photo.Health)
	api.Get("/feed", h.Photo.Feed)
	api.Get("/stats", h.Photo.Stats)
	api.Post("/upload", h.Photo.Upload)
	api.Post("/upload/batch", h.Photo.UploadBatch)
	api.Get("/photo/:id", h.Photo.Get)
	api.Delete("/photo/:id", h.Photo.Delete)

	// The hosted backend serves image bytes straight from MinIO's
	// public URLs; only the local backend streams them itself.
	if cfg.StorageBackend == config.BackendLocal {
		fiberApp.Get("/uploads/*", h.Photo.ServeFile)
	}
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"matreshka-feed/internal/app"
	"matreshka-feed/internal/bot"
	"matreshka-feed/internal/config"
	"matreshka-feed/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	deps, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build storage backend: %v", err)
	}
	defer deps.Close()

	services := service.NewServices(deps.Photos, deps.Users, deps.Blobs, deps.Redis, cfg)

	b, err := bot.New(cfg, services)
	if err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b.Run(ctx)
}

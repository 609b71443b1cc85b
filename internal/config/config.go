package config

import (
	"os"
	"strconv"
)

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendLocal  = "local"
	BackendHosted = "hosted"
)

type Config struct {
	Port        string
	Environment string

	// StorageBackend selects the metadata/blob pair: "local" keeps a
	// JSON document and image files under DataDir, "hosted" uses
	// Postgres and MinIO.
	StorageBackend string

	DataDir      string
	MetadataFile string

	DatabaseURL string

	RedisURL string

	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicUseSSL   bool

	MaxUploadBytes int64
	MaxWidth       int
	MaxHeight      int
	ThumbSize      int
	JPEGQuality    int

	BotToken          string
	WebAppURL         string
	AnalyticsBotToken string
	AnalyticsChatID   int64

	CORSOrigins string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendLocal),

		DataDir:      getEnv("DATA_DIR", "uploads"),
		MetadataFile: getEnv("METADATA_FILE", "photo_database.json"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOPublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "matreshka-photos"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOPublicUseSSL:   getBoolEnv("MINIO_PUBLIC_USE_SSL", true),

		MaxUploadBytes: getInt64Env("MAX_UPLOAD_BYTES", 16*1024*1024),
		MaxWidth:       getIntEnv("MAX_IMAGE_WIDTH", 1920),
		MaxHeight:      getIntEnv("MAX_IMAGE_HEIGHT", 1080),
		ThumbSize:      getIntEnv("THUMBNAIL_SIZE", 400),
		JPEGQuality:    getIntEnv("JPEG_QUALITY", 85),

		BotToken:          getEnv("BOT_TOKEN", ""),
		WebAppURL:         getEnv("WEB_APP_URL", ""),
		AnalyticsBotToken: getEnv("ANALYTICS_BOT_TOKEN", ""),
		AnalyticsChatID:   getInt64Env("ANALYTICS_CHAT_ID", 0),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Uploads  UploadsConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port        string
	FrontendURL string
}

type DatabaseConfig struct {
	Path string
}

type UploadsConfig struct {
	Driver   string // "local" or "s3"
	Dir      string
	S3Bucket string
	S3Region string
}

type AIConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

func Load() *Config {
	godotenv.Load() // .env is optional

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "5001"),
			FrontendURL: getEnv("FRONTEND_URL", "*"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "database.sqlite"),
		},
		Uploads: UploadsConfig{
			Driver:   getEnv("STORAGE_DRIVER", "local"),
			Dir:      getEnv("UPLOADS_DIR", "./uploads"),
			S3Bucket: getEnv("AWS_BUCKET_NAME", "ratehousing-images"),
			S3Region: getEnv("AWS_REGION", "us-west-2"),
		},
		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

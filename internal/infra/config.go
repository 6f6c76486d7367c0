package infra

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"assetstudio/internal/infra/credentials"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	OutputDir           string
	FalAPIKey           string
	FalBaseURL          string
	FalModel            string
	RequestTimeout      time.Duration
	DownloadTimeout     time.Duration
	StatusTimeout       time.Duration
	BatchConcurrency    int
	DownloadConcurrency int
	DatabaseURL         string
	Port                string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	AllowedOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A missing API key is not an error here: commands that
// never reach the image service run without one, and the fal client refuses
// to be constructed without it.
func LoadConfig() (*Config, error) {
	// .env files are optional.
	_ = godotenv.Load(".env", ".env.local")

	apiKey, _ := credentials.Resolve("", os.Getenv)

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "production"),
		OutputDir:           getEnv("ASSET_OUTPUT_DIR", "./assets"),
		FalAPIKey:           apiKey,
		FalBaseURL:          getEnv("FAL_BASE_URL", "https://api.fal.ai/v1"),
		FalModel:            getEnv("FAL_MODEL", "fal-ai/nano-banana-pro"),
		RequestTimeout:      time.Second * time.Duration(getEnvInt("FAL_REQUEST_TIMEOUT_SECONDS", 300)),
		DownloadTimeout:     time.Second * time.Duration(getEnvInt("FAL_DOWNLOAD_TIMEOUT_SECONDS", 30)),
		StatusTimeout:       time.Second * time.Duration(getEnvInt("FAL_STATUS_TIMEOUT_SECONDS", 30)),
		BatchConcurrency:    getEnvInt("BATCH_CONCURRENCY", 1),
		DownloadConcurrency: getEnvInt("DOWNLOAD_CONCURRENCY", 1),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Port:                getEnv("PORT", "8080"),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 330)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		AllowedOrigins:      getEnvList("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}
	if cfg.DownloadConcurrency < 1 {
		cfg.DownloadConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// PublicBaseURL is the externally reachable origin of this service. It is
	// embedded in callback URLs handed to the delivery layer and in the URLs
	// of materialized reference images, so remote providers can fetch them.
	PublicBaseURL string

	// CallbackSecret signs and verifies inbound webhook bodies.
	CallbackSecret string

	QueueURL   string
	QueueToken string

	TogetherAPIKey    string
	TogetherBaseURL   string
	FalAPIKey         string
	FalBaseURL        string
	ReplicateAPIToken string
	ReplicateBaseURL  string
	ModalToken        string
	ModalBaseURL      string

	StoragePath string
	S3Bucket    string

	AllowedOrigins []string

	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	KeepAliveInterval time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CallbackSecret:    os.Getenv("CALLBACK_SECRET"),
		QueueURL:          getEnv("QUEUE_URL", "https://qstash.upstash.io"),
		QueueToken:        os.Getenv("QUEUE_TOKEN"),
		TogetherAPIKey:    os.Getenv("TOGETHER_API_KEY"),
		TogetherBaseURL:   getEnv("TOGETHER_BASE_URL", "https://api.together.xyz/v1"),
		FalAPIKey:         os.Getenv("FAL_API_KEY"),
		FalBaseURL:        getEnv("FAL_BASE_URL", "https://fal.run"),
		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		ModalToken:        os.Getenv("MODAL_TOKEN"),
		ModalBaseURL:      getEnv("MODAL_BASE_URL", "https://modal.run"),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		S3Bucket:          getEnv("S3_BUCKET", "generations"),
		AllowedOrigins:    splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		KeepAliveInterval: time.Second * time.Duration(getEnvInt("SSE_KEEPALIVE_SECONDS", 15)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.CallbackSecret == "" {
		return nil, fmt.Errorf("CALLBACK_SECRET is required")
	}

	return cfg, nil
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

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
	AppEnv string
	Port   string

	PublicBaseURL string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ImageProvider   string // "openai" or "fake"
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	PrintfulToken   string
	PrintfulBaseURL string
	StripeSecretKey string
	StripeBaseURL   string
	PixelcutAPIKey  string
	PixelcutBaseURL string
	SendGridAPIKey  string
	SendGridBaseURL string

	FromEmail     string
	OperatorEmail string

	StoragePath      string
	StorageBaseURL   string
	StorageSecret    string
	GenerationInline bool

	JobTTL           time.Duration
	CatalogCacheTTL  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		ImageProvider:    getEnv("IMAGE_PROVIDER", "openai"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "dall-e-3"),
		PrintfulToken:    os.Getenv("PRINTFUL_ACCESS_TOKEN"),
		PrintfulBaseURL:  getEnv("PRINTFUL_BASE_URL", "https://api.printful.com"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeBaseURL:    getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
		PixelcutAPIKey:   os.Getenv("PIXELCUT_API_KEY"),
		PixelcutBaseURL:  getEnv("PIXELCUT_BASE_URL", "https://api.developer.pixelcut.ai"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendGridBaseURL:  getEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
		FromEmail:        getEnv("FROM_EMAIL", "hello@printgenie.ai"),
		OperatorEmail:    getEnv("OPERATOR_EMAIL", "hello@printgenie.ai"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
		StorageSecret:    os.Getenv("STORAGE_SIGNING_SECRET"),
		GenerationInline: getEnvBool("GENERATION_INLINE", true),
		JobTTL:           time.Minute * time.Duration(getEnvInt("JOB_TTL_MINUTES", 30)),
		CatalogCacheTTL:  time.Minute * time.Duration(getEnvInt("CATALOG_CACHE_TTL_MINUTES", 60)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:   splitEnvList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.ImageProvider != "fake" && cfg.ImageProvider != "openai" {
		return nil, fmt.Errorf("IMAGE_PROVIDER must be \"openai\" or \"fake\", got %q", cfg.ImageProvider)
	}

	if cfg.ImageProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required unless IMAGE_PROVIDER=fake")
	}

	if cfg.PrintfulToken == "" {
		return nil, fmt.Errorf("PRINTFUL_ACCESS_TOKEN is required")
	}

	return cfg, nil
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

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitEnvList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

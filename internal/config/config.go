package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/research-hub/submission-service/internal/authz"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// Origin allowed to send credentialed requests (the frontend).
	FrontendURL string

	// Server-side secret gating the admin bootstrap endpoint.
	AdminSecretKey string

	// Uploaded files live here, served statically at /uploads.
	UploadDir string

	SessionTTL time.Duration

	// Sign-in throttle: SignInRateLimit attempts per SignInRateWindow
	// per client.
	SignInRateLimit  int
	SignInRateWindow time.Duration

	// Kafka brokers for lifecycle events; empty disables publishing.
	KafkaBrokers []string

	// The single authoritative copy of the authorized index numbers.
	AuthorizedIndexNumbers []string
}

func LoadConfig() (*Config, error) {
	// Load .env if present; environment variables win in production.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AdminSecretKey: getEnv("SECRET_ADMIN_KEY", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),

		SessionTTL: getEnvAsDuration("SESSION_TTL", time.Hour),

		SignInRateLimit:  getEnvAsInt("SIGNIN_RATE_LIMIT", 5),
		SignInRateWindow: getEnvAsDuration("SIGNIN_RATE_WINDOW", 15*time.Minute),

		KafkaBrokers:           getEnvAsSlice("KAFKA_BROKERS"),
		AuthorizedIndexNumbers: authz.DefaultIndexNumbers,
	}

	if custom := getEnvAsSlice("AUTHORIZED_INDEX_NUMBERS"); len(custom) > 0 {
		cfg.AuthorizedIndexNumbers = custom
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && c.AdminSecretKey == "" {
		return fmt.Errorf("SECRET_ADMIN_KEY is required in production")
	}
	if c.SignInRateLimit <= 0 {
		return fmt.Errorf("SIGNIN_RATE_LIMIT must be positive")
	}
	if len(c.AuthorizedIndexNumbers) == 0 {
		return fmt.Errorf("authorized index number list must not be empty")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Allowlist builds the shared index-number allowlist from configuration.
func (c *Config) Allowlist() *authz.IndexAllowlist {
	return authz.NewIndexAllowlist(c.AuthorizedIndexNumbers)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

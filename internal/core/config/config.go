package config

import (
	"fmt"
	"log/slog" // Use the new structured logger
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = 3000
	defaultBodyLimit       = 1 << 20
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Port             int
	Env              string
	LogLevel         slog.Level
	BodyLimit        int
	ShutdownTimeout  time.Duration
	CORSAllowOrigins string
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// LoadConfig reads .env file and returns a Config struct
func LoadConfig() (*Config, error) {
	// Try loading .env file (it might not exist in Production, which is fine)
	if err := godotenv.Load(); err != nil {
		// We use Warn because it's not a crash, but it's worth noting
		slog.Warn("No .env file found, relying on System Env Variables")
	}

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (*Config, error) {
	port, err := getInt("PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}

	bodyLimit, err := getInt("BODY_LIMIT", defaultBodyLimit)
	if err != nil {
		return nil, err
	}
	if bodyLimit <= 0 {
		return nil, fmt.Errorf("BODY_LIMIT must be positive, got %d", bodyLimit)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return &Config{
		Port:             port,
		Env:              getEnv("ENV", "development"),
		LogLevel:         level,
		BodyLimit:        bodyLimit,
		ShutdownTimeout:  shutdownTimeout,
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
	}, nil
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds everything main needs to start the API.
type Config struct {
	Env             string
	Port            int
	DatabaseDriver  string
	DatabaseURI     string
	JWTSecret       string
	JWTIssuer       string
	JWTTTL          time.Duration
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Development reports whether CORS and gin should run in their permissive modes.
func (c *Config) Development() bool {
	return c.Env == "debug" || c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURI:    os.Getenv("DATABASE_URI"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      getEnv("JWT_ISSUER", "LittleLemon"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	switch cfg.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.DatabaseURI == "" {
		if cfg.DatabaseDriver != DriverSQLite {
			return nil, fmt.Errorf("DATABASE_URI is required for driver %s", cfg.DatabaseDriver)
		}
		cfg.DatabaseURI = "test.db"
		log.Println("Warning: DATABASE_URI not found in environment variables. Using default: " + cfg.DatabaseURI)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable not set")
	}

	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

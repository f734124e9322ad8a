package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Recipe wizard sessions
	WizardTTL time.Duration

	// Image storage
	S3BucketName string
	AWSRegion    string

	LogLevel string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig builds a Config from environment variables, Docker secrets and,
// outside production, a local .env file.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		// A missing .env file is fine; real environment variables win.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Environment:    env,
		ServerPort:     lookup("SERVER_PORT", "server_port", "8080"),
		ServerHost:     lookup("SERVER_HOST", "server_host", "0.0.0.0"),
		AllowedOrigins: splitList(lookup("CORS_ALLOWED_ORIGINS", "", "http://localhost:5173")),
		DBDriver:       lookup("DB_DRIVER", "", DriverPostgres),
		DBHost:         lookup("DB_HOST", "db_host", "localhost"),
		DBPort:         lookup("DB_PORT", "db_port", "5432"),
		DBUser:         lookup("DB_USER", "db_user", ""),
		DBPassword:     lookup("DB_PASSWORD", "db_password", ""),
		DBName:         lookup("DB_NAME", "db_name", "chefbook"),
		DBSSLMode:      lookup("DB_SSL_MODE", "db_ssl_mode", "disable"),
		SQLitePath:     lookup("SQLITE_PATH", "", "chefbook.db"),
		RedisHost:      lookup("REDIS_HOST", "redis_host", ""),
		RedisPort:      lookup("REDIS_PORT", "redis_port", "6379"),
		RedisPassword:  lookup("REDIS_PASSWORD", "redis_password", ""),
		RedisURL:       lookup("REDIS_URL", "redis_url", ""),
		JWTSecret:      lookup("JWT_SECRET", "jwt_secret", ""),
		S3BucketName:   lookup("S3_BUCKET_NAME", "", ""),
		AWSRegion:      lookup("AWS_REGION", "", "us-east-1"),
		LogLevel:       lookup("LOG_LEVEL", "", "info"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(lookup("REDIS_DB", "", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(lookup("TOKEN_TTL", "", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.WizardTTL, err = time.ParseDuration(lookup("WIZARD_TTL", "", "24h")); err != nil {
		return nil, fmt.Errorf("invalid WIZARD_TTL: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// S3Enabled reports whether image storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3BucketName != ""
}

// PostgresDSN returns the connection string for the configured database.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// lookup reads an environment variable, then the named Docker secret, then
// falls back to def.
func lookup(envVar, secret, def string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	if secret != "" {
		if v := readSecret(secret); v != "" {
			return v
		}
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

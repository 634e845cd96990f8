package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration.
// Populated from environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Paper    PaperSchemaConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string

	// ExposeDebugErrors controls whether the `_debug` payload is included
	// in error responses. Forced off in production unless explicitly set.
	ExposeDebugErrors bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// PaperSchemaConfig selects the paper schema variant.
// The corpus carries two: a minimal one (title >= 4, no category/tags)
// and an extended one (title >= 8, category + tags). Both are expressed
// as configuration over a single schema.
type PaperSchemaConfig struct {
	MinTitleLen    int
	ExtendedFields bool // enables category and tags
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:              getEnv("APP_NAME", "BlogMap API"),
			Environment:       env,
			Port:              getEnv("APP_PORT", "8080"),
			Version:           getEnv("APP_VERSION", "1.0.0"),
			ExposeDebugErrors: getEnvBool("EXPOSE_DEBUG_ERRORS", env != "production"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "blogmap"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Paper: PaperSchemaConfig{
			MinTitleLen:    getEnvInt("PAPER_MIN_TITLE_LEN", 4),
			ExtendedFields: getEnvBool("PAPER_EXTENDED_FIELDS", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	if c.App.Environment == "production" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD must be set in production")
	}
	if c.Paper.MinTitleLen < 1 || c.Paper.MinTitleLen > 128 {
		return fmt.Errorf("PAPER_MIN_TITLE_LEN out of range: %d", c.Paper.MinTitleLen)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

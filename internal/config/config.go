package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendAzTables = "aztables"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	LogLevel zerolog.Level

	Store StoreConfig

	// Server
	Port               string
	CORSOrigins        []string
	RateLimitPerMinute int

	// S3 export
	S3 S3Config
}

// StoreConfig selects and configures the record store backend
type StoreConfig struct {
	Backend         string
	SQLitePath      string
	DatabaseURL     string
	TableServiceURL string
	TablePrefix     string
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string // Empty disables export
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether an export bucket is configured
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Defaults are the values a binary uses when STORE_BACKEND or LOG_LEVEL is unset
type Defaults struct {
	StoreBackend string
	LogLevel     string
}

var (
	// ConsoleDefaults keeps logs out of the way of the menu
	ConsoleDefaults = Defaults{StoreBackend: BackendSQLite, LogLevel: "warn"}
	ServerDefaults  = Defaults{StoreBackend: BackendPostgres, LogLevel: "info"}
)

// Load reads configuration from environment variables
func Load(defaults Defaults) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	logLevel, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", defaults.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: logLevel,
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", defaults.StoreBackend),
			SQLitePath:      getEnv("SQLITE_PATH", "data/ledger.db"),
			DatabaseURL:     getEnv("DATABASE_URL", ""),
			TableServiceURL: getEnv("TABLE_SERVICE_URL", ""),
			TablePrefix:     getEnv("TABLE_PREFIX", "ledger"),
		},
		Port:               getEnv("PORT", "8080"),
		CORSOrigins:        strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		RateLimitPerMinute: rateLimit,
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("EXPORT_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendAzTables:
		if c.Store.TableServiceURL == "" {
			return fmt.Errorf("TABLE_SERVICE_URL is required for the aztables backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

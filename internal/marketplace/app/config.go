package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/service"
	"github.com/ponliv/marketplace/pkg/jwtx"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	RevocationStore = "store"
	RevocationRedis = "redis"
)

var (
	ErrMissingSecret = errors.New("config: JWT_SECRET must be set to at least 32 bytes")
	ErrUnknownDriver = errors.New("config: unknown STORE_DRIVER")
	ErrUnknownLedger = errors.New("config: unknown REVOCATION_BACKEND")
	ErrMissingRedis  = errors.New("config: REVOCATION_BACKEND=redis requires REDIS_ADDR")
)

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Revoked token pruning interval (default: 1h)

	StoreDriver   string        // sqlite or mongo (default: sqlite)
	StoreURL      string        // sqlite file or mongodb:// URI (default: marketplace.db)
	StoreDatabase string        // Mongo database name (default: marketplace)
	StoreTimeout  time.Duration // Per store call (default: 5s)

	JWTSecret   string        // Required: HS256 secret, >= 32 bytes
	JWTIssuer   string        // Issuer claim (default: ponliv-marketplace)
	TokenTTL    time.Duration // Session lifetime (default: 1h)
	TokenLeeway time.Duration // Clock skew allowed on exp/nbf (default: 30s)

	PepperFile      string        // Password pepper, created on first start (default: ./pepper)
	HashTimeout     time.Duration // Per hash or verify (default: 5s)
	HashConcurrency int           // Concurrent hashes (default: 4)

	RevocationBackend string // store or redis (default: store)
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
}

// LoadConfig reads the process environment. Rate limit overrides are read
// separately by httpx.LoadRateLimitsFromEnv.
func LoadConfig() (Config, error) {
	cfg := Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", StoreSQLite),
		StoreURL:      os.Getenv("STORE_URL"),
		StoreDatabase: getEnvOrDefault("STORE_DATABASE", "marketplace"),
		StoreTimeout:  getEnvDurationOrDefault("STORE_TIMEOUT", service.DefaultStoreTimeout),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   getEnvOrDefault("JWT_ISSUER", "ponliv-marketplace"),
		TokenTTL:    getEnvDurationOrDefault("TOKEN_TTL", jwtx.DefaultTokenTTL),
		TokenLeeway: getEnvDurationOrDefault("TOKEN_LEEWAY", 30*time.Second),

		PepperFile:      getEnvOrDefault("PEPPER_FILE", "pepper"),
		HashTimeout:     getEnvDurationOrDefault("HASH_TIMEOUT", 5*time.Second),
		HashConcurrency: getEnvIntOrDefault("HASH_CONCURRENCY", 4),

		RevocationBackend: getEnvOrDefault("REVOCATION_BACKEND", RevocationStore),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvIntOrDefault("REDIS_DB", 0),
	}

	if len(cfg.JWTSecret) < 32 {
		return Config{}, ErrMissingSecret
	}

	switch cfg.StoreDriver {
	case StoreSQLite:
		if cfg.StoreURL == "" {
			cfg.StoreURL = "marketplace.db"
		}
	case StoreMongo:
		if cfg.StoreURL == "" {
			cfg.StoreURL = "mongodb://localhost:27017"
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}

	switch cfg.RevocationBackend {
	case RevocationStore:
	case RevocationRedis:
		if cfg.RedisAddr == "" {
			return Config{}, ErrMissingRedis
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownLedger, cfg.RevocationBackend)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("1h", "90s") or a bare
// integer, read as minutes.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

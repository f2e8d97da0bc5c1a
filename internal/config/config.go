package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backends
const (
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// Rate limit counter stores
const (
	RateLimitStoreRedis    = "redis"
	RateLimitStoreDatabase = "database"
	RateLimitStoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Port   string
	DBType string // sqlite or postgres
	DBPath string

	PostgreSQL *PostgreSQLConfig

	RedisURL                   string // Optional: enables the shared counter store
	RateLimitStore             string // redis, database or memory
	RateLimitStoreTimeoutMs    int    // Upper bound for a single shared-store round trip
	RateLimitBreakerThreshold  int    // Consecutive store failures before the breaker opens
	RateLimitBreakerCooldownMs int
	RateLimitCleanupMinutes    int

	PublicURL string // Optional: base URL used in share links
	SeedFile  string // Optional: catalog file synced on startup

	TrustProxyHeaders string   // "auto", "true", "false"
	TrustedProxyIPs   []string // IPs/CIDRs allowed to set X-Forwarded-For

	ReadTimeoutSeconds  int
	WriteTimeoutSeconds int

	LogLevel  string
	LogFormat string // json or text

	RateLimits *RateLimits
}

// PostgreSQLConfig holds connection settings for the PostgreSQL backend.
type PostgreSQLConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int
	Options     string
	AutoMigrate bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	redisURL := getEnv("REDIS_URL", "")
	defaultStore := RateLimitStoreMemory
	if redisURL != "" {
		defaultStore = RateLimitStoreRedis
	}

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		DBType: strings.ToLower(getEnv("DB_TYPE", DBTypeSQLite)),
		DBPath: getEnv("DB_PATH", "./tooldir.db"),
		PostgreSQL: &PostgreSQLConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			User:        getEnv("POSTGRES_USER", "tooldir"),
			Password:    getEnv("POSTGRES_PASSWORD", ""),
			Database:    getEnv("POSTGRES_DB", "tooldir"),
			SSLMode:     getEnv("POSTGRES_SSLMODE", "prefer"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 25),
			Options:     getEnv("POSTGRES_OPTIONS", ""),
			AutoMigrate: getEnvBool("POSTGRES_AUTO_MIGRATE", true),
		},
		RedisURL:                   redisURL,
		RateLimitStore:             strings.ToLower(getEnv("RATE_LIMIT_STORE", defaultStore)),
		RateLimitStoreTimeoutMs:    getEnvInt("RATE_LIMIT_STORE_TIMEOUT_MS", 250),
		RateLimitBreakerThreshold:  getEnvInt("RATE_LIMIT_BREAKER_THRESHOLD", 3),
		RateLimitBreakerCooldownMs: getEnvInt("RATE_LIMIT_BREAKER_COOLDOWN_MS", 1000),
		RateLimitCleanupMinutes:    getEnvInt("RATE_LIMIT_CLEANUP_MINUTES", 10),
		PublicURL:                  strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		SeedFile:                   getEnv("SEED_FILE", ""),
		TrustProxyHeaders:          strings.ToLower(getEnv("TRUST_PROXY_HEADERS", "auto")),
		TrustedProxyIPs:            getEnvList("TRUSTED_PROXY_IPS", "127.0.0.1,::1,10.0.0.0/8,172.16.0.0/12,192.168.0.0/16"),
		ReadTimeoutSeconds:         getEnvInt("READ_TIMEOUT_SECONDS", 15),
		WriteTimeoutSeconds:        getEnvInt("WRITE_TIMEOUT_SECONDS", 15),
		LogLevel:                   strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:                  strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	window := time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 60)) * time.Minute
	cfg.RateLimits = NewRateLimits(window, map[string]int{
		ActionUpvote:      getEnvInt("RATE_LIMIT_UPVOTE", 10),
		ActionCollections: getEnvInt("RATE_LIMIT_COLLECTIONS", 20),
		ActionShare:       getEnvInt("RATE_LIMIT_SHARE", 30),
		ActionContact:     getEnvInt("RATE_LIMIT_CONTACT", 5),
		ActionRecommend:   getEnvInt("RATE_LIMIT_RECOMMEND", 5),
	})

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate ensures configuration values are sensible
func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch c.DBType {
	case DBTypeSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case DBTypePostgres:
		if c.PostgreSQL.Host == "" {
			return fmt.Errorf("POSTGRES_HOST cannot be empty")
		}
		if c.PostgreSQL.Port <= 0 || c.PostgreSQL.Port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be between 1 and 65535, got %d", c.PostgreSQL.Port)
		}
		if c.PostgreSQL.MaxConns <= 0 {
			return fmt.Errorf("POSTGRES_MAX_CONNS must be positive, got %d", c.PostgreSQL.MaxConns)
		}
	default:
		return fmt.Errorf("DB_TYPE must be %q or %q, got %q", DBTypeSQLite, DBTypePostgres, c.DBType)
	}

	switch c.RateLimitStore {
	case RateLimitStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_STORE is redis")
		}
	case RateLimitStoreDatabase, RateLimitStoreMemory:
	default:
		return fmt.Errorf("RATE_LIMIT_STORE must be redis, database or memory, got %q", c.RateLimitStore)
	}

	if c.RateLimitStoreTimeoutMs <= 0 {
		return fmt.Errorf("RATE_LIMIT_STORE_TIMEOUT_MS must be positive, got %d", c.RateLimitStoreTimeoutMs)
	}

	if c.RateLimitBreakerThreshold <= 0 {
		return fmt.Errorf("RATE_LIMIT_BREAKER_THRESHOLD must be positive, got %d", c.RateLimitBreakerThreshold)
	}

	if c.RateLimitBreakerCooldownMs <= 0 {
		return fmt.Errorf("RATE_LIMIT_BREAKER_COOLDOWN_MS must be positive, got %d", c.RateLimitBreakerCooldownMs)
	}

	if c.RateLimitCleanupMinutes <= 0 {
		return fmt.Errorf("RATE_LIMIT_CLEANUP_MINUTES must be positive, got %d", c.RateLimitCleanupMinutes)
	}

	if err := c.RateLimits.validate(); err != nil {
		return err
	}

	switch c.TrustProxyHeaders {
	case "auto", "true", "false":
	default:
		return fmt.Errorf("TRUST_PROXY_HEADERS must be auto, true or false, got %q", c.TrustProxyHeaders)
	}

	if c.PublicURL != "" && !strings.HasPrefix(c.PublicURL, "http://") && !strings.HasPrefix(c.PublicURL, "https://") {
		return fmt.Errorf("PUBLIC_URL must start with http:// or https://")
	}

	if c.ReadTimeoutSeconds <= 0 || c.WriteTimeoutSeconds <= 0 {
		return fmt.Errorf("READ_TIMEOUT_SECONDS and WRITE_TIMEOUT_SECONDS must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}

	return nil
}

// StoreTimeout is the deadline applied to each shared counter store call.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.RateLimitStoreTimeoutMs) * time.Millisecond
}

// BreakerCooldown is how long the rate limiter skips the shared store after it trips.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.RateLimitBreakerCooldownMs) * time.Millisecond
}

// CleanupInterval is the sweep period for expired rate limit counters.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.RateLimitCleanupMinutes) * time.Minute
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool accepts the usual strconv spellings (true/false/1/0)
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated list from environment variable
func getEnvList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

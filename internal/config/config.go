// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Quota and bulk defaults
const (
	DefaultMaxQueriesValue       = 30
	DefaultBulkSearchLimitValue  = 100
	DefaultAnalyticsLimitValue   = 200
	DefaultBulkFetchWorkersValue = 8
	DefaultLookupCacheItemsValue = 256
)

// Config holds all configuration for the MCP server.
type Config struct {
	RentCastBaseURL   string        // RENTCAST_BASE_URL, default "https://api.rentcast.io/v1"
	RentCastAPIKey    string        // RENTCAST_API_KEY, default ""
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms (10s)

	MaxQueries    int    // MAX_QUERIES, default 30 per user
	DefaultUserID string // DEFAULT_USER_ID, default "local"
	DatabaseURL   string // DATABASE_URL, default "" (in-memory store)

	LookupCacheMaxItems int           // LOOKUP_CACHE_MAX_ITEMS, default 256
	LookupCacheTTL      time.Duration // LOOKUP_CACHE_TTL_MS, default 3600000ms (1h)

	BulkFetchWorkers     int // BULK_FETCH_WORKERS, default 8
	BulkSearchLimit      int // BULK_SEARCH_LIMIT, default 100
	AnalyticsSearchLimit int // ANALYTICS_SEARCH_LIMIT, default 200

	// Artifact publishing (disabled when the bucket is empty)
	ExportS3Bucket string // EXPORT_S3_BUCKET, default ""
	ExportS3Prefix string // EXPORT_S3_PREFIX, default "exports"
	AWSRegion      string // AWS_REGION, default "us-east-1"

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, default "text" (text|json)
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		RentCastBaseURL:   getEnvString("RENTCAST_BASE_URL", "https://api.rentcast.io/v1"),
		RentCastAPIKey:    getEnvString("RENTCAST_API_KEY", ""),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 10000),

		MaxQueries:    getEnvInt("MAX_QUERIES", DefaultMaxQueriesValue),
		DefaultUserID: getEnvString("DEFAULT_USER_ID", "local"),
		DatabaseURL:   getEnvString("DATABASE_URL", ""),

		LookupCacheMaxItems: getEnvInt("LOOKUP_CACHE_MAX_ITEMS", DefaultLookupCacheItemsValue),
		LookupCacheTTL:      getEnvDurationMs("LOOKUP_CACHE_TTL_MS", 3600000),

		BulkFetchWorkers:     getEnvInt("BULK_FETCH_WORKERS", DefaultBulkFetchWorkersValue),
		BulkSearchLimit:      getEnvInt("BULK_SEARCH_LIMIT", DefaultBulkSearchLimitValue),
		AnalyticsSearchLimit: getEnvInt("ANALYTICS_SEARCH_LIMIT", DefaultAnalyticsLimitValue),

		ExportS3Bucket: getEnvString("EXPORT_S3_BUCKET", ""),
		ExportS3Prefix: getEnvString("EXPORT_S3_PREFIX", "exports"),
		AWSRegion:      getEnvString("AWS_REGION", "us-east-1"),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored; with no arguments ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// PublishEnabled reports whether exports can be uploaded to S3.
func (c *Config) PublishEnabled() bool {
	return c.ExportS3Bucket != ""
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}

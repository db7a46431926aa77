package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	CookieSecure       bool
	RateLimitPerMinute int
	TrustedProxies     []string

	// Finance REST backend
	APIBaseURL string
	APITimeout time.Duration

	// Sessions
	SessionBackend string
	SQLiteDBPath   string
	SessionTTL     time.Duration

	// Read-through cache for backend aggregates
	CacheBackend string
	RedisURL     string
	CacheTTL     time.Duration

	// AMQP ledger event relay
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger mirror (worker only)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MirrorConcurrency        int
	MirrorRetryDelay         time.Duration

	LogLevel  string
	LogFormat string
}

var (
	validSessionBackends = []string{"memory", "sqlite"}
	validCacheBackends   = []string{"memory", "redis"}
)

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8090"),
		APITimeout: getEnvDuration("API_TIMEOUT", 10*time.Second),

		SessionBackend: getEnv("SESSION_BACKEND", "memory"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/carteira.db"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),

		CacheBackend: getEnv("CACHE_BACKEND", "memory"),
		RedisURL:     getEnv("REDIS_URL", ""),
		CacheTTL:     getEnvDuration("CACHE_TTL", 30*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "carteira"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Lancamentos"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		MirrorConcurrency:        getEnvInt("MIRROR_CONCURRENCY", 1),
		MirrorRetryDelay:         getEnvDuration("MIRROR_RETRY_DELAY", 5*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks the settings the web server needs and returns every
// problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if u, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}
	if c.APITimeout < 100*time.Millisecond || c.APITimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be between 100ms and 2m", c.APITimeout))
	}

	if !slices.Contains(validSessionBackends, c.SessionBackend) {
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of %v", c.SessionBackend, validSessionBackends))
	}
	if c.SessionBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite sessions")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if !slices.Contains(validCacheBackends, c.CacheBackend) {
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.CacheBackend, validCacheBackends))
	}
	if c.CacheBackend == "redis" && c.RedisURL == "" {
		errors = append(errors, "REDIS_URL is required when using redis cache")
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	errors = append(errors, c.validateAMQP()...)

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings the mirror worker needs.
func (c *Config) ValidateWorker() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the worker")
	}
	errors = append(errors, c.validateAMQP()...)

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the worker")
	}
	hasFile := c.GoogleServiceAccountFile != ""
	if !hasFile && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.MirrorConcurrency < 1 || c.MirrorConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid mirror concurrency %d: must be between 1 and 64", c.MirrorConcurrency))
	}
	if c.MirrorRetryDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid mirror retry delay %v: must not be negative", c.MirrorRetryDelay))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, timeouts, resolver thresholds, and cache settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// WhatsApp Cloud API Configuration
	WhatsAppVerifyToken   string // Token echoed during webhook subscription handshake
	WhatsAppAppSecret     string // App secret for X-Hub-Signature-256 verification
	WhatsAppAccessToken   string // Bearer token for Graph API sends
	WhatsAppPhoneNumberID string // Sender phone number id for Graph API sends
	GraphAPIBaseURL       string // Graph API origin (overridable for tests)
	GraphAPIVersion       string // Graph API version segment (default: "v21.0")

	// NLU Configuration
	NLUAPIKey              string  // API key for the OpenAI-compatible NLU endpoint (empty = NLU disabled)
	NLUBaseURL             string  // Override for the NLU endpoint origin
	NLUModel               string  // Primary model for intent classification
	NLUFallbackModel       string  // Fallback model when the primary errors
	NLUConfidenceThreshold float64 // Minimum confidence to act on an NLU result (default: 0.3)
	NLUMaxRetries          int     // Retry budget per NLU request (default: 2)

	// Catalog Configuration
	CatalogPath string // Local catalog file path (empty = embedded data only)

	// Catalog Object Store Configuration (Cloudflare R2 / S3-compatible)
	CatalogR2AccountID       string // R2 account id (empty = object store disabled)
	CatalogR2AccessKeyID     string
	CatalogR2SecretAccessKey string
	CatalogR2Bucket          string
	CatalogR2Key             string // Object key of the catalog snapshot

	// Observability Configuration
	BetterstackToken string // Better Stack Logs token (empty = stdout only)
	SentryToken      string // Better Stack Errors token (empty = disabled)
	SentryHost       string // Better Stack Errors ingesting host
	SentryEnv        string // Deployment environment label

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Resolver Configuration
	ResolverMaxEditDistance int // Levenshtein matches require distance strictly below this (default: 4)
	ResolverMinWordLen      int // Minimum word length counted for word-overlap matching (default: 3)

	// Session Configuration
	SessionTTL time.Duration // Idle lifetime of a conversation session (default: 30m)
	SessionMax int           // Maximum live sessions before oldest eviction (default: 10000)

	// Cache Configuration
	CacheTTL time.Duration // Absolute expiration for reply cache entries (default: 1h)
	CacheMax int           // Maximum reply cache entries before oldest eviction (default: 1000)

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Timeouts
	WebhookTimeout time.Duration // Timeout for webhook bot processing (see config/timeouts.go)

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user (default: 10)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.2 = 1 per 5s)

	GlobalRateLimitRPS float64 // Global rate limit in requests per second (default: 80)
	SendRateLimitRPS   float64 // Outbound Graph API sends per second (default: 20)

	// Outbound Send Retry
	SendMaxRetries   int           // Retry budget for outbound sends (default: 3)
	SendRetryInitial time.Duration // Initial backoff before the first send retry (default: 500ms)

	// WhatsApp API Constraints
	MaxMessageLength    int // Maximum text body length (WhatsApp limit: 4096)
	MaxEventsPerWebhook int // Maximum messages processed per webhook delivery (default: 100)

	// Business Limits
	MaxCoursesPerCompare int // Maximum courses in one comparison reply (default: 4)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// WhatsApp Cloud API Configuration
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		GraphAPIBaseURL:       getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
		GraphAPIVersion:       getEnv("GRAPH_API_VERSION", "v21.0"),

		// NLU Configuration
		NLUAPIKey:              getEnv("NLU_API_KEY", ""),
		NLUBaseURL:             getEnv("NLU_BASE_URL", ""),
		NLUModel:               getEnv("NLU_MODEL", "gpt-4o-mini"),
		NLUFallbackModel:       getEnv("NLU_FALLBACK_MODEL", ""),
		NLUConfidenceThreshold: getFloatEnv("NLU_CONFIDENCE_THRESHOLD", 0.3),
		NLUMaxRetries:          getIntEnv("NLU_MAX_RETRIES", 2),

		// Catalog Configuration
		CatalogPath: getEnv("CATALOG_PATH", ""),

		// Catalog Object Store Configuration
		CatalogR2AccountID:       getEnv("CATALOG_R2_ACCOUNT_ID", ""),
		CatalogR2AccessKeyID:     getEnv("CATALOG_R2_ACCESS_KEY_ID", ""),
		CatalogR2SecretAccessKey: getEnv("CATALOG_R2_SECRET_ACCESS_KEY", ""),
		CatalogR2Bucket:          getEnv("CATALOG_R2_BUCKET", ""),
		CatalogR2Key:             getEnv("CATALOG_R2_KEY", "catalog/courses.json.zst"),

		// Observability Configuration
		BetterstackToken: getEnv("BETTERSTACK_TOKEN", ""),
		SentryToken:      getEnv("SENTRY_TOKEN", ""),
		SentryHost:       getEnv("SENTRY_HOST", "errors.betterstack.com"),
		SentryEnv:        getEnv("SENTRY_ENVIRONMENT", "production"),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Server Configuration
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", GracefulShutdown),

		// Resolver Configuration
		ResolverMaxEditDistance: getIntEnv("RESOLVER_MAX_EDIT_DISTANCE", 4),
		ResolverMinWordLen:      getIntEnv("RESOLVER_MIN_WORD_LEN", 3),

		// Session Configuration
		SessionTTL: getDurationEnv("SESSION_TTL", 30*time.Minute),
		SessionMax: getIntEnv("SESSION_MAX", 10000),

		// Cache Configuration
		CacheTTL: getDurationEnv("CACHE_TTL", time.Hour),
		CacheMax: getIntEnv("CACHE_MAX", 1000),

		// Bot Configuration
		Bot: BotConfig{
			WebhookTimeout:            getDurationEnv("WEBHOOK_TIMEOUT", WebhookProcessing),
			UserRateLimitBurst:        getFloatEnv("USER_RATE_LIMIT_BURST", 10.0),
			UserRateLimitRefillPerSec: getFloatEnv("USER_RATE_LIMIT_REFILL_PER_SEC", 0.2), // 1 per 5s
			GlobalRateLimitRPS:        getFloatEnv("GLOBAL_RATE_LIMIT_RPS", 80.0),
			SendRateLimitRPS:          getFloatEnv("SEND_RATE_LIMIT_RPS", 20.0),
			SendMaxRetries:            getIntEnv("SEND_MAX_RETRIES", 3),
			SendRetryInitial:          getDurationEnv("SEND_RETRY_INITIAL", 500*time.Millisecond),
			MaxMessageLength:          WhatsAppMaxTextLength,
			MaxEventsPerWebhook:       getIntEnv("MAX_EVENTS_PER_WEBHOOK", 100),
			MaxCoursesPerCompare:      getIntEnv("MAX_COURSES_PER_COMPARE", 4),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.WhatsAppVerifyToken == "" {
		errs = append(errs, errors.New("WHATSAPP_VERIFY_TOKEN is required"))
	}
	if c.WhatsAppAppSecret == "" {
		errs = append(errs, errors.New("WHATSAPP_APP_SECRET is required"))
	}
	if c.WhatsAppAccessToken == "" {
		errs = append(errs, errors.New("WHATSAPP_ACCESS_TOKEN is required"))
	}
	if c.WhatsAppPhoneNumberID == "" {
		errs = append(errs, errors.New("WHATSAPP_PHONE_NUMBER_ID is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.NLUConfidenceThreshold < 0 || c.NLUConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("NLU_CONFIDENCE_THRESHOLD must be in [0,1], got %v", c.NLUConfidenceThreshold))
	}
	if c.ResolverMaxEditDistance <= 0 {
		errs = append(errs, fmt.Errorf("RESOLVER_MAX_EDIT_DISTANCE must be positive, got %d", c.ResolverMaxEditDistance))
	}
	if c.ResolverMinWordLen <= 0 {
		errs = append(errs, fmt.Errorf("RESOLVER_MIN_WORD_LEN must be positive, got %d", c.ResolverMinWordLen))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %v", c.SessionTTL))
	}
	if c.SessionMax <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_MAX must be positive, got %d", c.SessionMax))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL))
	}
	if c.CacheMax <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_MAX must be positive, got %d", c.CacheMax))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}
	if c.HasObjectStore() {
		if c.CatalogR2AccessKeyID == "" || c.CatalogR2SecretAccessKey == "" {
			errs = append(errs, errors.New("CATALOG_R2_ACCESS_KEY_ID and CATALOG_R2_SECRET_ACCESS_KEY are required when CATALOG_R2_ACCOUNT_ID is set"))
		}
		if c.CatalogR2Bucket == "" {
			errs = append(errs, errors.New("CATALOG_R2_BUCKET is required when CATALOG_R2_ACCOUNT_ID is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks bot-specific configuration values
func (b *BotConfig) Validate() error {
	var errs []error

	if b.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %v", b.WebhookTimeout))
	}
	if b.UserRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("USER_RATE_LIMIT_BURST must be positive, got %v", b.UserRateLimitBurst))
	}
	if b.UserRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("USER_RATE_LIMIT_REFILL_PER_SEC must be positive, got %v", b.UserRateLimitRefillPerSec))
	}
	if b.GlobalRateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("GLOBAL_RATE_LIMIT_RPS must be positive, got %v", b.GlobalRateLimitRPS))
	}
	if b.SendRateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("SEND_RATE_LIMIT_RPS must be positive, got %v", b.SendRateLimitRPS))
	}
	if b.SendMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("SEND_MAX_RETRIES cannot be negative, got %d", b.SendMaxRetries))
	}
	if b.MaxEventsPerWebhook <= 0 {
		errs = append(errs, fmt.Errorf("MAX_EVENTS_PER_WEBHOOK must be positive, got %d", b.MaxEventsPerWebhook))
	}
	if b.MaxCoursesPerCompare < 2 {
		errs = append(errs, fmt.Errorf("MAX_COURSES_PER_COMPARE must be at least 2, got %d", b.MaxCoursesPerCompare))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasNLU returns true if the NLU fallback classifier is configured.
func (c *Config) HasNLU() bool {
	return c.NLUAPIKey != ""
}

// HasObjectStore returns true if the catalog object store source is configured.
func (c *Config) HasObjectStore() bool {
	return c.CatalogR2AccountID != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

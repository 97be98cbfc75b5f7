package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	CRMAPIURL     string
	CRMAPIKey     string
	CRMLeadSource string
	CRMTimeout    time.Duration

	PropertyPageUserAgent string
	PropertyPageTimeout   time.Duration
	PropertyPageCacheTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	WebhookToken     string
	WebhookRateLimit float64
	WebhookRateBurst int

	EmailAllowedDomain string
	EmailSubjectPhrase string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	InboundEmailBucket string
	InboundEmailPrefix string
	InboundQueueURL    string
	WorkerCount        int
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// CRM
		CRMAPIURL:     getEnv("CRM_API_URL", ""),
		CRMAPIKey:     getEnv("CRM_API_KEY", ""),
		CRMLeadSource: getEnv("CRM_LEAD_SOURCE", "greenAcres"),
		CRMTimeout:    getEnvAsDuration("CRM_TIMEOUT", 15*time.Second),

		// Remote classification fallback
		PropertyPageUserAgent: getEnv("PROPERTY_PAGE_USER_AGENT", "Mozilla/5.0"),
		PropertyPageTimeout:   getEnvAsDuration("PROPERTY_PAGE_TIMEOUT", 10*time.Second),
		PropertyPageCacheTTL:  getEnvAsDuration("PROPERTY_PAGE_CACHE_TTL", 168*time.Hour),

		// Empty RedisAddr disables the page cache.
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		// Webhook transport
		WebhookToken:     getEnv("WEBHOOK_TOKEN", ""),
		WebhookRateLimit: getEnvAsFloat("WEBHOOK_RATE_LIMIT", 0),
		WebhookRateBurst: getEnvAsInt("WEBHOOK_RATE_BURST", 10),

		// Email transport
		EmailAllowedDomain: strings.ToLower(strings.TrimSpace(getEnv("EMAIL_ALLOWED_DOMAIN", "green-acres.com"))),
		EmailSubjectPhrase: strings.ToLower(strings.TrimSpace(getEnv("EMAIL_SUBJECT_PHRASE", "request for information"))),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		InboundEmailBucket: getEnv("INBOUND_EMAIL_BUCKET", ""),
		InboundEmailPrefix: getEnv("INBOUND_EMAIL_PREFIX", ""),
		InboundQueueURL:    getEnv("INBOUND_QUEUE_URL", ""),
		WorkerCount:        getEnvAsInt("WORKER_COUNT", 2),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

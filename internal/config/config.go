// Package config provides environment configuration for the service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Heuristics holds the tunable constants of the signal extractors and the
// aggregate reducer. Defaults preserve the behavior the dashboard was
// calibrated against; override via environment only when product requirements
// change.
type Heuristics struct {
	// Each urgency keyword hit adds this much to the 0-10 score.
	UrgencyKeywordWeight int
	// Bucket edges, inclusive: critical >= Critical, high >= High, medium >= Medium.
	UrgencyCritical int
	UrgencyHigh     int
	UrgencyMedium   int
	// A message is urgent when its score reaches this threshold.
	UrgentThreshold int

	// Default SLA target for urgent-message response time.
	SLATarget time.Duration
	// Reading-speed constant for the time-saved estimate.
	SecondsPerWord float64
}

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Embedded store
	DatabasePath string

	// NATS settings (transport event bus)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings
	JWTSecret string

	// Inference provider settings
	RemoteProvider      string // "openai" or "anthropic"
	RemoteAPIKey        string
	RemoteBaseURL       string // override for OpenAI-compatible endpoints (DeepSeek etc.)
	RemoteModel         string
	AnthropicAPIKey     string
	RemoteTimeout       time.Duration
	RemoteMaxElapsed    time.Duration
	AvailabilityTTL     time.Duration
	AvailabilityTimeout time.Duration

	// Bulk analysis
	BulkBatchSize  int
	BulkBatchDelay time.Duration
	BulkMaxLimit   int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool

	Heuristics Heuristics
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Store
		DatabasePath: getEnv("DATABASE_PATH", "data/intelligence.db"),

		// NATS
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Providers
		RemoteProvider:      getEnv("REMOTE_PROVIDER", "openai"),
		RemoteAPIKey:        getEnv("REMOTE_API_KEY", ""),
		RemoteBaseURL:       getEnv("REMOTE_BASE_URL", ""),
		RemoteModel:         getEnv("REMOTE_MODEL", ""),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		RemoteTimeout:       getDurationEnv("REMOTE_TIMEOUT", 25*time.Second),
		RemoteMaxElapsed:    getDurationEnv("REMOTE_MAX_ELAPSED", 45*time.Second),
		AvailabilityTTL:     getDurationEnv("AVAILABILITY_TTL", 30*time.Second),
		AvailabilityTimeout: getDurationEnv("AVAILABILITY_TIMEOUT", 5*time.Second),

		// Bulk
		BulkBatchSize:  getIntEnv("BULK_BATCH_SIZE", 10),
		BulkBatchDelay: getDurationEnv("BULK_BATCH_DELAY", 500*time.Millisecond),
		BulkMaxLimit:   getIntEnv("BULK_MAX_LIMIT", 500),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),

		Heuristics: Heuristics{
			UrgencyKeywordWeight: getIntEnv("URGENCY_KEYWORD_WEIGHT", 2),
			UrgencyCritical:      getIntEnv("URGENCY_CRITICAL", 8),
			UrgencyHigh:          getIntEnv("URGENCY_HIGH", 6),
			UrgencyMedium:        getIntEnv("URGENCY_MEDIUM", 4),
			UrgentThreshold:      getIntEnv("URGENT_THRESHOLD", 7),
			SLATarget:            getDurationEnv("SLA_TARGET", 30*time.Minute),
			SecondsPerWord:       getFloatEnv("SECONDS_PER_WORD", 0.25),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// CORS allowlist for the health and webhook surface, comma-separated.
	AllowedOrigins string

	// Redis-backed session persistence. When RedisAddr is empty the server
	// falls back to the in-memory store (single instance only).
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	// Pricing and booking webhooks.
	PricingWebhookURL string
	BookingWebhookURL string
	WebhookTimeout    time.Duration

	// Gemini draft proposer. Optional: when the key is empty the engine
	// runs on the lexical extractors alone.
	GeminiAPIKey  string
	GeminiModelID string
	GeminiTimeout time.Duration

	// SendGrid booking confirmation emails.
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OpsNotifyEmail    string

	// Dialogue tuning.
	MaxSilentTurns int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 4*time.Hour),

		PricingWebhookURL: getEnv("PRICING_WEBHOOK_URL", ""),
		BookingWebhookURL: getEnv("BOOKING_WEBHOOK_URL", ""),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 8*time.Second),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		GeminiTimeout: getEnvAsDuration("GEMINI_TIMEOUT", 4*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "TidyCall"),
		OpsNotifyEmail:    getEnv("OPS_NOTIFY_EMAIL", ""),

		MaxSilentTurns: getEnvAsInt("MAX_SILENT_TURNS", 2),
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

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr     string
	AppEnv   string
	LogLevel string

	JWTSecret string
	TokenTTL  time.Duration

	// Store selects the persistence backend: "mongo" or "memory".
	Store    string
	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	OutboxDatabaseURL string
	KafkaBrokers      []string
	NotificationTopic string

	StripeSecretKey string
	StripeAPIKey    string
	PaymentCurrency string

	CORSOrigins string

	// AdminEmail and AdminPassword seed an admin account on startup when set.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Addr:     getEnv("APP_ADDR", ":8080"),
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 72*time.Hour),

		Store:    strings.ToLower(getEnv("STORE", "mongo")),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "marketplace"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OutboxDatabaseURL: getEnv("OUTBOX_DATABASE_URL", ""),
		KafkaBrokers:      getEnvList("KAFKA_BROKERS"),
		NotificationTopic: getEnv("NOTIFICATION_TOPIC", "notifications"),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripeAPIKey:    getEnv("STRIPE_API_KEY", ""),
		PaymentCurrency: getEnv("PAYMENT_CURRENCY", "inr"),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain integers are read as hours
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Hour
	}
	return def
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

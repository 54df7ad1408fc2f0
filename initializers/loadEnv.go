package initializers

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kariqs/camiu-api/utils"
	"github.com/joho/godotenv"
)

const defaultSessionTTL = 7 * 24 * time.Hour

type Config struct {
	Port string

	// DBDriver is memory, mysql or postgres.
	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// SessionDriver is memory or postgres.
	SessionDriver string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	RedisURL      string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	CORSOrigins []string

	S3Bucket            string
	OrderWebhookURL     string
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string
	Mail                utils.MailConfig

	SeedSampleData bool
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		Port: getEnv("PORT", "5000"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "memory")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", ""),
		DBUser:      getEnv("DB_USER", "camiu"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "camiu"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		SessionDriver: strings.ToLower(getEnv("SESSION_DRIVER", "memory")),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", defaultSessionTTL),
		CookieSecure:  getEnvAsBool("COOKIE_SECURE", false),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		S3Bucket:            getEnv("S3_BUCKET", ""),
		OrderWebhookURL:     getEnv("ORDER_WEBHOOK_URL", ""),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeCurrency:      getEnv("STRIPE_CURRENCY", "usd"),
		Mail: utils.MailConfig{
			From:        getEnv("FROM_EMAIL", ""),
			Password:    getEnv("FROM_EMAIL_PASSWORD", ""),
			SMTPHost:    getEnv("FROM_EMAIL_SMTP", ""),
			SMTPAddress: getEnv("SMTP_ADDRESS", ""),
		},

		SeedSampleData: getEnvAsBool("SEED_SAMPLE_DATA", true),
	}

	if cfg.SessionSecret == "" {
		log.Println("SESSION_SECRET is not set, using an insecure development secret")
		cfg.SessionSecret = "camiu-dev-secret"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var res []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}

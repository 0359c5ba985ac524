package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver    string
	DatabaseURL string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string

	JWTSecret   string
	AdminAPIKey string
	CORSOrigins []string

	RabbitMQURL     string
	OrderExchange   string
	OrderQueue      string
	DeadLetterQueue string

	RedisAddress    string
	RedisPassword   string
	ProductCacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: getEnvFromFile("DATABASE_URL_FILE", "DATABASE_URL", ""),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "buzcart"),

		JWTSecret:   getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", ""),
		AdminAPIKey: getEnvFromFile("ADMIN_API_KEY_FILE", "ADMIN_API_KEY", ""),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		OrderExchange:   getEnv("ORDER_EXCHANGE", "orders_exchange"),
		OrderQueue:      getEnv("ORDER_QUEUE", "orders_queue"),
		DeadLetterQueue: getEnv("DEAD_LETTER_QUEUE", "orders_dead_letter"),

		RedisAddress:    getEnv("REDIS_ADDRESS", ""),
		RedisPassword:   getEnvFromFile("REDIS_PASSWORD_FILE", "REDIS_PASSWORD", ""),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFromFile prefers a mounted secret file over the plain variable.
func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

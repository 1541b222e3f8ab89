package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	HTTP     HTTPConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Cart     CartConfig

	AutoMigrate bool
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN returns the postgres URL for pgxpool and the migration driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TelegramConfig struct {
	Token         string // staff order-taking bot
	KitchenToken  string // bot that posts tickets to the kitchen chat
	KitchenChatID int64
}

type HTTPConfig struct {
	Addr           string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

type CartConfig struct {
	TTL      time.Duration
	Currency string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	kitchenChat, err := strconv.ParseInt(getEnv("KITCHEN_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("KITCHEN_CHAT_ID: %w", err)
	}
	reqTimeout, err := time.ParseDuration(getEnv("HTTP_REQUEST_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_REQUEST_TIMEOUT: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	cartTTL, err := time.ParseDuration(getEnv("CART_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("CART_TTL: %w", err)
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "backoffice"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Telegram: TelegramConfig{
			Token:         getEnv("TOKEN", ""),
			KitchenToken:  getEnv("KITCHEN_TOKEN", ""),
			KitchenChatID: kitchenChat,
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			RequestTimeout: reqTimeout,
			SessionTTL:     sessionTTL,
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "restaurant-orders"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Cart: CartConfig{
			TTL:      cartTTL,
			Currency: getEnv("CURRENCY", "USD"),
		},
		AutoMigrate: isTruthy(os.Getenv("AUTO_MIGRATE")),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
}

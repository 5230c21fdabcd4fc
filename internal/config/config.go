// Package config loads process configuration from the environment.
// A .env file in the working directory is honoured when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Booking event backends.
const (
	EventsNone     = "none"
	EventsRabbitMQ = "rabbitmq"
	EventsKafka    = "kafka"
)

// Config is the full application configuration.
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"8080"`
	Store     string `envconfig:"STORE" default:"postgres"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Events    EventsConfig
}

// DBConfig holds PostgreSQL connection settings (DB_* variables).
// Nested fields stay untagged: envconfig falls back to a tag's bare name
// (USER, PORT) when the prefixed variable is unset.
type DBConfig struct {
	Host            string        `default:"localhost"`
	Port            string        `default:"5432"`
	User            string        `default:"postgres"`
	Password        string        `default:"postgres"`
	Name            string        `default:"eventticketing"`
	SSLMode         string        `default:"disable"`
	MaxConns        int32         `split_words:"true" default:"20"`
	ConnectAttempts int           `split_words:"true" default:"5"`
	RetryDelay      time.Duration `split_words:"true" default:"2s"`
}

// DSN builds a libpq-compatible connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `default:"0"`
}

// RateLimitConfig configures the per-client token bucket (RATE_LIMIT_*).
type RateLimitConfig struct {
	Enabled bool          `default:"true"`
	RPS     int           `default:"20"`
	Burst   int           `default:"40"`
	Prefix  string        `default:"rl"`
	TTL     time.Duration `default:"1m"`
}

// EventsConfig selects where booking events are published (EVENTS_*).
type EventsConfig struct {
	Backend      string   `default:"none"`
	RabbitURL    string   `split_words:"true"`
	Exchange     string   `default:"booking.exchange"`
	KafkaBrokers []string `split_words:"true"`
	KafkaTopic   string   `split_words:"true" default:"booking-events"`
}

// Load reads .env (if any) and the process environment into a Config.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StorePostgres, StoreMemory)
	}

	switch c.Events.Backend {
	case EventsNone:
	case EventsRabbitMQ:
		if c.Events.RabbitURL == "" {
			return fmt.Errorf("EVENTS_RABBIT_URL is required for the rabbitmq backend")
		}
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("EVENTS_KAFKA_BROKERS is required for the kafka backend")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.Events.Backend)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

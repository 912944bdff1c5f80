package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Persistence backend selection
	DataBackend  string
	SQLiteDBPath string
	PostgresURL  string

	// AMQP event pipeline (optional: empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export worker
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Demo credentials seeded into empty non-persistent backends
	SeedUserEmail  string
	SeedUserSecret string

	// Subscription write pacing for WebSocket delivery
	WriteTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_transactions"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		SeedUserEmail:  getEnv("SEED_USER_EMAIL", "test@example.com"),
		SeedUserSecret: getEnv("SEED_USER_SECRET", "password123"),

		WriteTimeout: getEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresURL == "" {
			errs = append(errs, "POSTGRES_URL cannot be empty when using postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite postgres]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.WriteTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid ws write timeout %v: must be at least 1 second", c.WriteTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

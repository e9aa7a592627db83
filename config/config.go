package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone database for DIP_TIMEZONE

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as the dip rule, the notification sink and the archive sink. The struct is
// built once at startup and handed to constructors explicitly.
//
// Example ENV equivalent:
//
//	DIP_TICKERS=ANET,CSCO,NVDA,BA
//	DIP_THRESHOLD=10.0
//	DIP_TIMEZONE=America/New_York
//	EMAIL_SENDER=alerts@example.com
//	EMAIL_RECIPIENTS=me@example.com,you@example.com
//	NOTIFY_BACKEND=ses
//	ARCHIVE_BACKEND=s3
//	ARCHIVE_CONTAINER=dipwatch-archive
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Dip      DipConfig      // Tickers, threshold and calendar settings
	Market   MarketConfig   // Price-data provider settings
	Email    EmailConfig    // Sender and recipients of the report
	Notify   NotifyConfig   // Notification backend selection
	Archive  ArchiveConfig  // Archival backend selection
	AWS      AWSConfig      // Shared AWS settings (SES, S3)
	Postgres PostgresConfig // PostgreSQL connection settings (postgres archive)
	Redis    RedisConfig    // Redis connection settings (redis archive)
	Kafka    KafkaConfig    // Kafka settings (kafka notifier)
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// DipConfig describes the dip rule itself.
type DipConfig struct {
	Tickers   []string
	Threshold float64
	Timezone  string
	Parallel  int // concurrent symbol lookups; 1 keeps the run sequential
}

// Location resolves the configured timezone.
func (d DipConfig) Location() (*time.Location, error) {
	return time.LoadLocation(d.Timezone)
}

// MarketConfig configures the price-data HTTP client.
type MarketConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// EmailConfig holds the report's sender and recipient addresses.
type EmailConfig struct {
	Sender     string
	Recipients []string
}

// NotifyConfig selects the notification backend.
//
// Backend is one of "ses", "webhook", "kafka" or "log".
type NotifyConfig struct {
	Backend     string
	WebhookURL  string
	WebhookName string
}

// ArchiveConfig selects the archive backend.
//
// Backend is one of "none", "s3", "postgres" or "redis". Container is the
// bucket name for s3 and a logical namespace for the other backends.
type ArchiveConfig struct {
	Backend   string
	Container string
}

// AWSConfig holds settings shared by the SES and S3 clients.
type AWSConfig struct {
	Region string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// RedisConfig defines connection details for the redis archive.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig defines brokers and topic for the kafka notifier.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

var (
	notifyBackends  = []string{"ses", "webhook", "kafka", "log"}
	archiveBackends = []string{"none", "s3", "postgres", "redis"}
)

// Load builds a Config by reading from .env file or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Loads .env into the process environment with godotenv (missing file is fine).
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Constructs the PostgreSQL connection string (DSN).
//   - Calls validateConfig() and returns every problem found as a single error.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore error if no .env

	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("DIP_TICKERS", "ANET,CSCO,NVDA,BA")
	v.SetDefault("DIP_THRESHOLD", 10.0)
	v.SetDefault("DIP_TIMEZONE", "America/New_York")
	v.SetDefault("DIP_PARALLEL", 1)

	v.SetDefault("MARKET_BASE_URL", "https://query1.finance.yahoo.com")
	v.SetDefault("MARKET_TIMEOUT", "10s")
	v.SetDefault("MARKET_USER_AGENT", "Mozilla/5.0 (compatible; dipwatch/1.0)")

	v.SetDefault("EMAIL_SENDER", "")
	v.SetDefault("EMAIL_RECIPIENTS", "")

	v.SetDefault("NOTIFY_BACKEND", "ses")
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_NAME", "dipwatch")

	v.SetDefault("ARCHIVE_BACKEND", "none")
	v.SetDefault("ARCHIVE_CONTAINER", "")

	v.SetDefault("AWS_REGION", "us-east-1")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "dipwatch")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "dip_notifications")

	v.AutomaticEnv()

	cfg := Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
		},
		Dip: DipConfig{
			Tickers:   splitList(v.GetString("DIP_TICKERS"), true),
			Threshold: v.GetFloat64("DIP_THRESHOLD"),
			Timezone:  v.GetString("DIP_TIMEZONE"),
			Parallel:  v.GetInt("DIP_PARALLEL"),
		},
		Market: MarketConfig{
			BaseURL:   strings.TrimRight(v.GetString("MARKET_BASE_URL"), "/"),
			Timeout:   v.GetDuration("MARKET_TIMEOUT"),
			UserAgent: v.GetString("MARKET_USER_AGENT"),
		},
		Email: EmailConfig{
			Sender:     v.GetString("EMAIL_SENDER"),
			Recipients: splitList(v.GetString("EMAIL_RECIPIENTS"), false),
		},
		Notify: NotifyConfig{
			Backend:     strings.ToLower(v.GetString("NOTIFY_BACKEND")),
			WebhookURL:  v.GetString("WEBHOOK_URL"),
			WebhookName: v.GetString("WEBHOOK_NAME"),
		},
		Archive: ArchiveConfig{
			Backend:   strings.ToLower(v.GetString("ARCHIVE_BACKEND")),
			Container: v.GetString("ARCHIVE_CONTAINER"),
		},
		AWS: AWSConfig{
			Region: v.GetString("AWS_REGION"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS"), false),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	cfg.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateConfig ensures required variables are present and consistent with
// the selected backends.
//
// Behavior:
//   - Checks each critical field of cfg.
//   - Collects every problem in a slice.
//   - Returns a single error listing them, or nil.
func validateConfig(cfg Config) error {
	var problems []string

	if cfg.Server.Port == "" {
		problems = append(problems, "SERVER_PORT is required")
	}
	if len(cfg.Dip.Tickers) == 0 {
		problems = append(problems, "DIP_TICKERS must list at least one symbol")
	}
	if cfg.Dip.Threshold < 0 {
		problems = append(problems, "DIP_THRESHOLD must not be negative")
	}
	if cfg.Dip.Parallel < 1 {
		problems = append(problems, "DIP_PARALLEL must be at least 1")
	}
	if _, err := cfg.Dip.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("DIP_TIMEZONE %q: %v", cfg.Dip.Timezone, err))
	}
	if cfg.Market.BaseURL == "" {
		problems = append(problems, "MARKET_BASE_URL is required")
	}
	if cfg.Market.Timeout <= 0 {
		problems = append(problems, "MARKET_TIMEOUT must be positive")
	}

	if !contains(notifyBackends, cfg.Notify.Backend) {
		problems = append(problems, fmt.Sprintf("NOTIFY_BACKEND %q not one of %v", cfg.Notify.Backend, notifyBackends))
	}
	switch cfg.Notify.Backend {
	case "ses":
		if cfg.Email.Sender == "" {
			problems = append(problems, "EMAIL_SENDER is required for ses")
		}
		if len(cfg.Email.Recipients) == 0 {
			problems = append(problems, "EMAIL_RECIPIENTS is required for ses")
		}
	case "webhook":
		if cfg.Notify.WebhookURL == "" {
			problems = append(problems, "WEBHOOK_URL is required for webhook")
		}
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			problems = append(problems, "KAFKA_BROKERS and KAFKA_TOPIC are required for kafka")
		}
	}

	if !contains(archiveBackends, cfg.Archive.Backend) {
		problems = append(problems, fmt.Sprintf("ARCHIVE_BACKEND %q not one of %v", cfg.Archive.Backend, archiveBackends))
	}
	if cfg.Archive.Backend != "none" && cfg.Archive.Container == "" {
		problems = append(problems, "ARCHIVE_CONTAINER is required when archival is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(s string, upper bool) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

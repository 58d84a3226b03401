package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	API       APIConfig
	Razorpay  RazorpayConfig
	Webhook   WebhookConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Telegram  TelegramConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

// IsDevelopment reports whether APP_ENV selects development mode.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type DatabaseConfig struct {
	Driver  string // "mysql" or "sqlite"
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
	Path    string // sqlite file
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

// RazorpayConfig holds the gateway credentials. The secrets are handed to
// the reconciler at construction and never logged.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

type WebhookConfig struct {
	DedupTTL      time.Duration
	LogRetention  time.Duration
	PruneSchedule string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

type TelegramConfig struct {
	Token        string
	ReportChatID int64
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	readEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: databaseFromEnv(),
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret:     viper.GetString("RAZORPAY_KEY_SECRET"),
			WebhookSecret: viper.GetString("RAZORPAY_WEBHOOK_SECRET"),
			BaseURL:       viper.GetString("RAZORPAY_BASE_URL"),
		},
		Webhook: WebhookConfig{
			DedupTTL:      parseDuration(viper.GetString("WEBHOOK_DEDUP_TTL"), 24*time.Hour),
			LogRetention:  parseDuration(viper.GetString("WEBHOOK_LOG_RETENTION"), 30*24*time.Hour),
			PruneSchedule: viper.GetString("WEBHOOK_PRUNE_SCHEDULE"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		Telegram: TelegramConfig{
			Token:        viper.GetString("TELEGRAM_BOT_TOKEN"),
			ReportChatID: viper.GetInt64("TELEGRAM_REPORT_CHAT_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabaseOnly reads just the database settings, for the migrate
// command which must run without gateway credentials.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	readEnv()

	db := databaseFromEnv()
	switch db.Driver {
	case "mysql", "sqlite":
		return &db, nil
	default:
		return nil, fmt.Errorf("DB_DRIVER %q is not supported", db.Driver)
	}
}

func readEnv() {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("DB_PATH", "razorpay.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1")
	viper.SetDefault("WEBHOOK_DEDUP_TTL", "24h")
	viper.SetDefault("WEBHOOK_LOG_RETENTION", "720h")
	viper.SetDefault("WEBHOOK_PRUNE_SCHEDULE", "0 0 3 * * *")
	viper.SetDefault("KAFKA_TOPIC", "payment-session-status")
	viper.SetDefault("OTEL_SERVICE_NAME", "razorpay-bridge")
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Driver:  strings.ToLower(viper.GetString("DB_DRIVER")),
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
		Path:    viper.GetString("DB_PATH"),
	}
}

// Validate reports configuration the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Razorpay.KeyID == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID is required"))
	}
	if c.Razorpay.KeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_SECRET is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT %d is out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Summary returns log fields describing the configuration. Secrets are
// reported only as presence flags.
func (c *Config) Summary() []zap.Field {
	return []zap.Field{
		zap.Int("port", c.Server.Port),
		zap.String("env", c.Server.Env),
		zap.String("db_driver", c.Database.Driver),
		zap.String("razorpay_base_url", c.Razorpay.BaseURL),
		zap.String("razorpay_key_id", c.Razorpay.KeyID),
		zap.Bool("razorpay_key_secret_set", c.Razorpay.KeySecret != ""),
		zap.Bool("razorpay_webhook_secret_set", c.Razorpay.WebhookSecret != ""),
		zap.Bool("api_key_set", c.API.Key != ""),
		zap.Strings("kafka_brokers", c.Kafka.Brokers),
		zap.Bool("tracing_enabled", c.Telemetry.OTLPEndpoint != ""),
		zap.Bool("telegram_reports_enabled", c.Telegram.Token != "" && c.Telegram.ReportChatID != 0),
	}
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

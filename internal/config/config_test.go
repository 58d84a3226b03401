package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_test_secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "https://api.razorpay.com/v1", cfg.Razorpay.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Webhook.DedupTTL)
	assert.Equal(t, 720*time.Hour, cfg.Webhook.LogRetention)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadRequiresRazorpayKeys(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAZORPAY_KEY_ID")
	assert.Contains(t, err.Error(), "RAZORPAY_KEY_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("WEBHOOK_DEDUP_TTL", "not-a-duration")
	t.Setenv("TELEGRAM_REPORT_CHAT_ID", "-1001234")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.Webhook.DedupTTL)
	assert.Equal(t, int64(-1001234), cfg.Telegram.ReportChatID)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "postgres"},
		Razorpay: RazorpayConfig{KeyID: "id", KeySecret: "secret"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestSummaryOmitsSecrets(t *testing.T) {
	cfg := &Config{
		Razorpay: RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "very-secret-key", WebhookSecret: "very-secret-webhook"},
		API:      APIConfig{Key: "very-secret-token"},
	}
	for _, f := range cfg.Summary() {
		assert.False(t, strings.Contains(f.String, "very-secret"), "field %s leaks a secret", f.Key)
	}
}

func TestLoadDatabaseOnlySkipsGatewayKeys(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/bridge.db")

	db, err := LoadDatabaseOnly()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", db.Driver)
	assert.Equal(t, "/tmp/bridge.db", db.Path)

	t.Setenv("DB_DRIVER", "oracle")
	_, err = LoadDatabaseOnly()
	assert.Error(t, err)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/bootstrap"
	"github.com/Sammk21/medusa-v2/internal/config"
	cronpkg "github.com/Sammk21/medusa-v2/internal/cron"
	"github.com/Sammk21/medusa-v2/internal/events"
	"github.com/Sammk21/medusa-v2/internal/metrics"
	"github.com/Sammk21/medusa-v2/internal/middleware"
	"github.com/Sammk21/medusa-v2/internal/notify"
	"github.com/Sammk21/medusa-v2/internal/payment"
	"github.com/Sammk21/medusa-v2/internal/repository"
	"github.com/Sammk21/medusa-v2/internal/router"
	"github.com/Sammk21/medusa-v2/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// --- Logger ---
	logger, err := newLogger(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	logger.Info("Configuration loaded", cfg.Summary()...)

	// --- Tracing ---
	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, version, logger)
	if err != nil {
		return err
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	webhookLog := repository.NewWebhookEventRepository(db)

	// --- Payment provider ---
	m := metrics.New()
	gateway := payment.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)
	reconciler := payment.NewReconciler(gateway, payment.Secrets{
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
	}, logger, payment.WithRecorder(m))
	if cfg.Razorpay.WebhookSecret == "" {
		logger.Warn("RAZORPAY_WEBHOOK_SECRET is not set, every webhook will be rejected")
	}

	// --- Outbound notifications ---
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	reporter, err := notify.NewReporter(cfg.Telegram.Token, cfg.Telegram.ReportChatID, logger)
	if err != nil {
		logger.Warn("Telegram reports disabled", zap.Error(err))
		reporter = notify.NopReporter{}
	}

	// --- Webhook Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewEventDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.Webhook.DedupTTL,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Routes ---
	router.Setup(e, router.Deps{
		Provider:   reconciler,
		WebhookLog: webhookLog,
		Publisher:  publisher,
		Reporter:   reporter,
		Deduper:    deduper,
		Verifier:   reconciler,
		Metrics:    m,
		APIKey:     cfg.API.Key,
		Logger:     logger,
	})

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(webhookLog, cfg.Webhook.PruneSchedule, cfg.Webhook.LogRetention, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting razorpay-bridge server", zap.String("addr", addr), zap.String("version", version))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop HTTP server
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close publisher", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}

package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/events"
	"github.com/Sammk21/medusa-v2/internal/handler"
	"github.com/Sammk21/medusa-v2/internal/handler/api"
	"github.com/Sammk21/medusa-v2/internal/metrics"
	"github.com/Sammk21/medusa-v2/internal/middleware"
	"github.com/Sammk21/medusa-v2/internal/notify"
	"github.com/Sammk21/medusa-v2/internal/payment"
	"github.com/Sammk21/medusa-v2/internal/repository"
	"github.com/Sammk21/medusa-v2/internal/telemetry"
)

// Deps bundles what the routes are built from.
type Deps struct {
	Provider   payment.Provider
	WebhookLog *repository.WebhookEventRepository
	Publisher  events.Publisher
	Reporter   notify.Reporter
	Deduper    middleware.EventDeduper
	Verifier   middleware.WebhookVerifier
	Metrics    *metrics.Metrics
	APIKey     string
	Logger     *zap.Logger
}

// Setup configures all routes for the Echo server.
func Setup(e *echo.Echo, d Deps) {
	e.Validator = api.NewRequestValidator()

	// Global middleware
	e.Use(echomw.Recover())
	e.Use(telemetry.Middleware())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.CORS())

	var recorder api.OperationRecorder
	if d.Metrics != nil {
		recorder = d.Metrics
	}

	// Handlers
	sessionHandler := api.NewSessionHandler(d.Provider, d.Publisher, recorder, d.Logger)
	webhookHandler := handler.NewWebhookHandler(d.Provider, webhookLog(d.WebhookLog), d.Publisher, d.Reporter, d.Logger)

	// API group with token auth
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(d.APIKey))

	apiGroup.POST("/sessions", sessionHandler.Initiate)
	apiGroup.POST("/sessions/confirm", sessionHandler.Confirm)
	apiGroup.POST("/sessions/capture", sessionHandler.Capture)
	apiGroup.POST("/sessions/cancel", sessionHandler.Cancel)
	apiGroup.POST("/sessions/delete", sessionHandler.Delete)
	apiGroup.POST("/sessions/refund", sessionHandler.Refund)
	apiGroup.POST("/sessions/status", sessionHandler.Status)
	apiGroup.POST("/sessions/retrieve", sessionHandler.Retrieve)

	if d.WebhookLog != nil {
		logHandler := api.NewWebhookLogHandler(d.WebhookLog, d.Logger)
		apiGroup.GET("/webhooks", logHandler.List)
	}

	// Gateway webhooks (authenticated by signature, deduplicated by event id)
	webhookGroup := e.Group("/webhooks")
	webhookGroup.Use(middleware.WebhookEventDedup(d.Deduper, d.Verifier, d.Logger))
	webhookGroup.POST("/razorpay", webhookHandler.Razorpay)

	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "provider": d.Provider.Name()})
	})
}

// webhookLog avoids handing the handler a typed nil.
func webhookLog(repo *repository.WebhookEventRepository) handler.WebhookLog {
	if repo == nil {
		return nil
	}
	return repo
}

package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/models"
	"github.com/Sammk21/medusa-v2/internal/pkg/utils"
	"github.com/Sammk21/medusa-v2/internal/repository"
)

// WebhookLogReader lists stored webhook deliveries.
type WebhookLogReader interface {
	FindAll(ctx context.Context, limit, page int, filter repository.WebhookEventFilter) ([]models.WebhookEvent, int64, error)
}

// WebhookLogHandler serves the webhook delivery log.
type WebhookLogHandler struct {
	repo   WebhookLogReader
	logger *zap.Logger
}

func NewWebhookLogHandler(repo WebhookLogReader, logger *zap.Logger) *WebhookLogHandler {
	return &WebhookLogHandler{repo: repo, logger: logger}
}

// List handles GET /api/webhooks.
func (h *WebhookLogHandler) List(c echo.Context) error {
	limit := utils.ParseInt(c.QueryParam("limit"), 50)
	page := utils.ParseInt(c.QueryParam("page"), 1)
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if page <= 0 {
		page = 1
	}

	filter := repository.WebhookEventFilter{
		EventType:  c.QueryParam("event_type"),
		SessionRef: c.QueryParam("session_ref"),
		Action:     c.QueryParam("action"),
	}

	entries, total, err := h.repo.FindAll(c.Request().Context(), limit, page, filter)
	if err != nil {
		h.logger.Error("Failed to list webhook deliveries", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Failed to retrieve webhook deliveries", nil)
	}
	return successResponse(c, "Successful", paginatedResponse(entries, total, page, limit))
}

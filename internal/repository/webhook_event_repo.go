package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Sammk21/medusa-v2/internal/models"
)

// WebhookEventRepository handles webhook delivery log operations.
type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create stores one delivery.
func (r *WebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// WebhookEventFilter narrows FindAll.
type WebhookEventFilter struct {
	EventType  string
	SessionRef string
	Action     string
}

// FindAll returns deliveries, newest first, with pagination.
func (r *WebhookEventRepository) FindAll(ctx context.Context, limit, page int, filter WebhookEventFilter) ([]models.WebhookEvent, int64, error) {
	var events []models.WebhookEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if filter.EventType != "" {
		db = db.Where("event_type = ?", filter.EventType)
	}
	if filter.SessionRef != "" {
		db = db.Where("session_ref = ?", filter.SessionRef)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// FindByEventID returns the deliveries recorded for a gateway event id.
func (r *WebhookEventRepository) FindByEventID(ctx context.Context, eventID string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteOlderThan removes deliveries created before cutoff.
func (r *WebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.WebhookEvent{})
	return result.RowsAffected, result.Error
}

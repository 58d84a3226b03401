package models

import "time"

// WebhookEvent is one received Razorpay webhook delivery. It is an audit log;
// payment session state lives with the platform.
type WebhookEvent struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventID        string    `gorm:"column:event_id;size:191;not null;default:'';index" json:"event_id"`
	EventType      string    `gorm:"column:event_type;size:100;not null;default:'';index" json:"event_type"`
	SignatureValid bool      `gorm:"column:signature_valid;default:false;index" json:"signature_valid"`
	Action         string    `gorm:"column:action;size:50" json:"action"`
	SessionRef     string    `gorm:"column:session_ref;size:191;index" json:"session_ref"`
	GatewayRef     string    `gorm:"column:gateway_ref;size:191" json:"gateway_ref"`
	PaymentID      string    `gorm:"column:payment_id;size:191" json:"payment_id"`
	AmountMinor    int64     `gorm:"column:amount_minor" json:"amount_minor"`
	Error          string    `gorm:"column:error;type:text" json:"error"`
	Payload        string    `gorm:"column:payload;type:text" json:"payload"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "razorpay_webhook_events"
}

package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/payment"
)

// EventDeduper tracks processed webhook event IDs.
type EventDeduper interface {
	// Seen marks eventID as processed and reports whether it already was.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Forget drops the mark so a redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}

type redisEventDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisEventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+eventID, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

func (d *redisEventDeduper) Forget(ctx context.Context, eventID string) error {
	return d.client.Del(ctx, d.prefix+":"+eventID).Err()
}

type memoryEventDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryEventDeduper(ttl time.Duration) *memoryEventDeduper {
	return &memoryEventDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: time.Now().Add(ttl),
	}
}

func (d *memoryEventDeduper) Seen(_ context.Context, eventID string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[eventID]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[eventID] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for id, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, id)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

func (d *memoryEventDeduper) Forget(_ context.Context, eventID string) error {
	d.mu.Lock()
	delete(d.seen, eventID)
	d.mu.Unlock()
	return nil
}

// NewEventDeduper builds a Redis deduper and falls back to in-memory on failure.
func NewEventDeduper(addr, pass string, db int, ttl time.Duration) (EventDeduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return newMemoryEventDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return newMemoryEventDeduper(ttl), err
	}

	return &redisEventDeduper{
		client: client,
		prefix: "razorpay:event",
		ttl:    ttl,
	}, nil
}

// WebhookVerifier checks a webhook signature over the raw body.
type WebhookVerifier interface {
	VerifyWebhook(rawBody []byte, signature string) bool
}

// maxDedupBody matches the body cap of the webhook handler.
const maxDedupBody = 1 << 20

// WebhookEventDedup acknowledges redelivered webhook events by
// X-Razorpay-Event-Id without running the handler again. Only deliveries
// whose signature verifies claim an event id, so a forgery carrying a genuine
// id never blocks the real delivery. A delivery the handler did not accept
// with a 2xx is forgotten so the gateway's retry still gets through.
func WebhookEventDedup(deduper EventDeduper, verifier WebhookVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			eventID := req.Header.Get(payment.EventIDHeader)
			if eventID == "" {
				return next(c)
			}

			if verifier != nil {
				rawBody, err := io.ReadAll(io.LimitReader(req.Body, maxDedupBody))
				if err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
				}
				req.Body = io.NopCloser(bytes.NewReader(rawBody))
				if !verifier.VerifyWebhook(rawBody, req.Header.Get(payment.SignatureHeader)) {
					// The handler rejects it; nothing is claimed.
					return next(c)
				}
			}

			isDuplicate, err := deduper.Seen(req.Context(), eventID)
			if err != nil {
				logger.Warn("Webhook dedup unavailable", zap.String("event_id", eventID), zap.Error(err))
				return next(c)
			}
			if isDuplicate {
				logger.Info("Duplicate webhook delivery ignored", zap.String("event_id", eventID))
				// The gateway only needs a 2xx response to stop retries.
				return c.JSON(http.StatusOK, map[string]interface{}{"status": "duplicate"})
			}

			err = next(c)
			if err != nil || c.Response().Status >= 300 {
				if ferr := deduper.Forget(context.WithoutCancel(req.Context()), eventID); ferr != nil {
					logger.Warn("Failed to release webhook event id", zap.String("event_id", eventID), zap.Error(ferr))
				}
			}
			return err
		}
	}
}

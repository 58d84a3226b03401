package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/payment"
)

func newRedisDeduper(t *testing.T, ttl time.Duration) (EventDeduper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	d, err := NewEventDeduper(mr.Addr(), "", 0, ttl)
	require.NoError(t, err)
	return d, mr
}

func TestRedisDeduperSeenAndForget(t *testing.T) {
	d, mr := newRedisDeduper(t, time.Hour)
	ctx := context.Background()

	dup, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, dup)
	assert.True(t, mr.Exists("razorpay:event:evt_1"))

	dup, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, dup)

	require.NoError(t, d.Forget(ctx, "evt_1"))
	dup, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestRedisDeduperExpires(t *testing.T) {
	d, mr := newRedisDeduper(t, time.Minute)
	ctx := context.Background()

	_, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	dup, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestNewEventDeduperFallsBackToMemory(t *testing.T) {
	d, err := NewEventDeduper("127.0.0.1:1", "", 0, time.Hour)
	assert.Error(t, err)
	require.NotNil(t, d)

	_, isMemory := d.(*memoryEventDeduper)
	assert.True(t, isMemory)
}

func TestMemoryDeduper(t *testing.T) {
	d := newMemoryEventDeduper(time.Hour)
	ctx := context.Background()

	dup, _ := d.Seen(ctx, "evt_1")
	assert.False(t, dup)
	dup, _ = d.Seen(ctx, "evt_1")
	assert.True(t, dup)

	require.NoError(t, d.Forget(ctx, "evt_1"))
	dup, _ = d.Seen(ctx, "evt_1")
	assert.False(t, dup)
}

// signatureVerifier accepts only the signature "good".
type signatureVerifier struct{}

func (signatureVerifier) VerifyWebhook(rawBody []byte, signature string) bool {
	return len(rawBody) > 0 && signature == "good"
}

func runDedup(d EventDeduper, verifier WebhookVerifier, eventID, signature string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(`{"event":"payment.captured"}`))
	if eventID != "" {
		req.Header.Set(payment.EventIDHeader, eventID)
	}
	req.Header.Set(payment.SignatureHeader, signature)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := WebhookEventDedup(d, verifier, zap.NewNop())(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestWebhookEventDedupSkipsRedelivery(t *testing.T) {
	d, _ := newRedisDeduper(t, time.Hour)
	calls := 0
	ok := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	assert.Equal(t, http.StatusOK, runDedup(d, signatureVerifier{}, "evt_1", "good", ok).Code)
	rec := runDedup(d, signatureVerifier{}, "evt_1", "good", ok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate")
	assert.Equal(t, 1, calls)
}

func TestWebhookEventDedupForgetsRejectedDelivery(t *testing.T) {
	d, _ := newRedisDeduper(t, time.Hour)
	calls := 0
	rejected := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
	}
	failing := func(c echo.Context) error {
		calls++
		return errors.New("boom")
	}
	ok := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}

	assert.Equal(t, http.StatusUnauthorized, runDedup(d, nil, "evt_1", "", rejected).Code)
	assert.Equal(t, http.StatusInternalServerError, runDedup(d, nil, "evt_1", "", failing).Code)
	assert.Equal(t, http.StatusOK, runDedup(d, nil, "evt_1", "", ok).Code)
	assert.Equal(t, 3, calls)
}

func TestWebhookEventDedupUnverifiedDeliveryClaimsNothing(t *testing.T) {
	d, mr := newRedisDeduper(t, time.Hour)
	var genuine *httptest.ResponseRecorder
	genuineCalls := 0
	ok := func(c echo.Context) error {
		genuineCalls++
		return c.NoContent(http.StatusOK)
	}

	// The genuine delivery arrives while the forged one is still running.
	forged := func(c echo.Context) error {
		assert.False(t, mr.Exists("razorpay:event:evt_1"))
		genuine = runDedup(d, signatureVerifier{}, "evt_1", "good", ok)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
	}

	rec := runDedup(d, signatureVerifier{}, "evt_1", "forged", forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, genuine)
	assert.Equal(t, http.StatusOK, genuine.Code)
	assert.NotContains(t, genuine.Body.String(), "duplicate")
	assert.Equal(t, 1, genuineCalls)
	assert.True(t, mr.Exists("razorpay:event:evt_1"))
}

func TestWebhookEventDedupKeepsBodyForHandler(t *testing.T) {
	d := newMemoryEventDeduper(time.Hour)
	var body []byte
	read := func(c echo.Context) error {
		var err error
		body, err = io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	}

	runDedup(d, signatureVerifier{}, "evt_1", "good", read)
	assert.Equal(t, `{"event":"payment.captured"}`, string(body))
}

func TestWebhookEventDedupWithoutEventID(t *testing.T) {
	d := newMemoryEventDeduper(time.Hour)
	calls := 0
	ok := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}

	runDedup(d, signatureVerifier{}, "", "good", ok)
	runDedup(d, signatureVerifier{}, "", "good", ok)
	assert.Equal(t, 2, calls)
}

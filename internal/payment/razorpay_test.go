package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRazorpayServer(t *testing.T, handler http.HandlerFunc) *RazorpayClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRazorpayClient("rzp_test_key", "rzp_test_secret", srv.URL)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestRazorpayCreateOrder(t *testing.T) {
	client := newRazorpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 49900, body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "sess_1", body["receipt"])

		writeJSON(w, http.StatusOK, `{"id":"order_1","entity":"order","amount":49900,"currency":"INR","receipt":"sess_1","status":"created","notes":{"session_id":"sess_1"}}`)
	})

	order, err := client.CreateOrder(context.Background(), 49900, "INR", "sess_1", map[string]string{"session_id": "sess_1"})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, "sess_1", order.Notes["session_id"])
}

func TestRazorpayErrorDescription(t *testing.T) {
	client := newRazorpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist","reason":"input_validation_failed"}}`)
	})

	_, err := client.FetchPayment(context.Background(), "pay_missing")
	require.Error(t, err)

	var apiErr *GatewayAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
	assert.Equal(t, "The id provided does not exist", apiErr.Description)

	wrapped := newGatewayError("fetch payment", err)
	assert.Equal(t, "The id provided does not exist", wrapped.Details)
}

func TestRazorpayNonJSONError(t *testing.T) {
	client := newRazorpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.FetchOrder(context.Background(), "order_1")
	var apiErr *GatewayAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Description)
}

func TestRazorpayFetchOrderPayments(t *testing.T) {
	client := newRazorpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/order_1/payments", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"entity":"collection","count":2,"items":[
			{"id":"pay_a","status":"failed","order_id":"order_1","notes":[]},
			{"id":"pay_b","status":"authorized","order_id":"order_1","amount":49900,"notes":{}}
		]}`)
	})

	payments, err := client.FetchOrderPayments(context.Background(), "order_1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "pay_b", payments[1].ID)
	assert.Equal(t, int64(49900), payments[1].Amount)
}

func TestRazorpayCaptureAndRefund(t *testing.T) {
	client := newRazorpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/payments/pay_1/capture":
			assert.EqualValues(t, 49900, body["amount"])
			assert.Equal(t, "INR", body["currency"])
			writeJSON(w, http.StatusOK, `{"id":"pay_1","amount":49900,"currency":"INR","status":"captured","captured":true}`)
		case "/payments/pay_1/refund":
			assert.EqualValues(t, 1000, body["amount"])
			writeJSON(w, http.StatusOK, `{"id":"rfnd_1","entity":"refund","payment_id":"pay_1","amount":1000,"status":"processed"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	p, err := client.CapturePayment(context.Background(), "pay_1", 49900, "INR")
	require.NoError(t, err)
	assert.True(t, p.Captured)

	refund, err := client.RefundPayment(context.Background(), "pay_1", 1000)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refund.ID)
	assert.Equal(t, int64(1000), refund.Amount)
}

func TestRazorpayCreateOrderWithoutID(t *testing.T) {
	client := newRazorpayServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := client.CreateOrder(context.Background(), 100, "INR", "r", nil)
	assert.Error(t, err)
}

package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader is the header Razorpay signs webhook deliveries with.
const SignatureHeader = "X-Razorpay-Signature"

// EventIDHeader carries the unique delivery id of a webhook event.
const EventIDHeader = "X-Razorpay-Event-Id"

// VerifyPaymentSignature checks the checkout signature Razorpay returns to the
// client after a payment: hex(HMAC-SHA256(secret, orderRef + "|" + paymentRef)).
// It never panics; malformed input is simply not authentic.
func VerifyPaymentSignature(orderRef, paymentRef, signature, secret string) bool {
	if orderRef == "" || paymentRef == "" {
		return false
	}
	return verifyHMAC(orderRef+"|"+paymentRef, signature, secret)
}

// VerifyWebhookSignature checks a webhook signature over the raw request body.
// Without a configured secret every delivery is rejected.
func VerifyWebhookSignature(rawBody []byte, signature, secret string) bool {
	if len(rawBody) == 0 {
		return false
	}
	return verifyHMAC(string(rawBody), signature, secret)
}

func verifyHMAC(payload, signature, secret string) bool {
	if secret == "" {
		return false
	}
	given, ok := decodeHexDigest(signature)
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hmac.Equal(mac.Sum(nil), given)
}

func decodeHexDigest(signature string) ([]byte, bool) {
	if len(signature) != hex.EncodedLen(sha256.Size) {
		return nil, false
	}
	b, err := hex.DecodeString(signature)
	if err != nil {
		return nil, false
	}
	return b, true
}

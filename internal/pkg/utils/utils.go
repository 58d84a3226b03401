package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// maxReceiptLength is the longest receipt Razorpay accepts on an order.
const maxReceiptLength = 40

// GenerateReceiptID generates a receipt for orders created without a
// platform session id.
func GenerateReceiptID() string {
	id := "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(id) > maxReceiptLength {
		id = id[:maxReceiptLength]
	}
	return id
}

// ParseInt safely converts string to int with a default value.
func ParseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

// FormatNumber adds comma separators to a number.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	if neg {
		return "-" + result.String()
	}
	return result.String()
}

package license

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIDRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, user := range []string{
		"alice@example.com",
		"uid-without-at-sign",
		"weird+tag@sub.example.co.kr",
	} {
		orderID := NewOrderID(user, now)
		got, ok := ParseOrderID(orderID)
		require.True(t, ok, "order %q", orderID)
		assert.Equal(t, user, got)
	}
}

func TestOrderIDCarriesTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orderID := NewOrderID("alice@example.com", now)
	assert.Contains(t, orderID, fmt.Sprintf("%d", now.UnixMilli()))
}

func TestParseOrderIDRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
	}{
		{"empty", ""},
		{"wrong prefix", "INVOICE-YWxpY2U=-123"},
		{"too few segments", "ORDER-YWxpY2U="},
		{"invalid base64", "ORDER-!!!!-123"},
		{"empty user segment", "ORDER--123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseOrderID(tt.orderID)
			assert.False(t, ok)
		})
	}
}

func TestNewLicenseKeyFormat(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pattern := regexp.MustCompile(fmt.Sprintf(`^LICENSE-%d-[0-9A-F]{9}$`, now.UnixMilli()))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key := NewLicenseKey(now)
		assert.Regexp(t, pattern, key)
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
}

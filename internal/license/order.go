package license

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const orderPrefix = "ORDER-"

// NewOrderID builds an order identifier in the wire format the payment
// widget already uses: ORDER-<base64(user)>-<unix millis>. The user segment
// is informational; activation resolves the user from the pending-order
// record and only falls back to decoding this segment.
func NewOrderID(user string, now time.Time) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(user))
	return fmt.Sprintf("%s%s-%d", orderPrefix, encoded, now.UnixMilli())
}

// ParseOrderID extracts the user identifier from a legacy order ID.
// Reports false when the identifier segment is absent or does not decode;
// callers degrade to the placeholder user in that case.
func ParseOrderID(orderID string) (string, bool) {
	if !strings.HasPrefix(orderID, orderPrefix) {
		return "", false
	}

	parts := strings.Split(orderID, "-")
	if len(parts) < 3 {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

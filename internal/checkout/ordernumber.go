package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const orderNumberPrefix = "AGC"

// newOrderNumber builds a customer-facing order reference like
// AGC-20260901-3FA2B1C4. The random suffix keeps numbers unguessable;
// the unique index on orders.order_number backstops collisions.
func newOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s",
		orderNumberPrefix,
		now.UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(suffix)),
	), nil
}

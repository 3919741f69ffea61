package service

import (
	"fmt"
	"math/rand"
	"time"
)

const orderCodePrefix = "GOF"

// GenerateOrderCode builds a human-readable order code: prefix, UTC timestamp
// to the second, and a 3-digit random suffix, e.g. GOF20260828153012-417.
// Uniqueness is enforced by the orders.order_code constraint; the checkout
// retries with a fresh code on collision.
func GenerateOrderCode() string {
	now := time.Now().UTC()
	suffix := 100 + rand.Intn(900)
	return fmt.Sprintf("%s%s-%d", orderCodePrefix, now.Format("20060102150405"), suffix)
}

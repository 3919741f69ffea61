package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipping, false},
		{OrderPending, OrderCompleted, false},
		{OrderConfirmed, OrderShipping, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderConfirmed, OrderCompleted, false},
		{OrderConfirmed, OrderPending, false},
		{OrderShipping, OrderCompleted, true},
		{OrderShipping, OrderCancelled, true},
		{OrderShipping, OrderConfirmed, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCompleted, OrderShipping, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderConfirmed, false},
		{OrderCancelled, OrderCancelled, true}, // idempotent re-cancel
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.want, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderPending.Valid())
	assert.True(t, OrderCancelled.Valid())
	assert.False(t, OrderStatus(-1).Valid())
	assert.False(t, OrderStatus(5).Valid())
}

func TestPaymentStatus_Valid(t *testing.T) {
	assert.True(t, PaymentUnpaid.Valid())
	assert.True(t, PaymentRefunded.Valid())
	assert.False(t, PaymentStatus(3).Valid())
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/repository"
)

func storedOrder() *domain.Order {
	return &domain.Order{
		ID:            7,
		OrderCode:     "GOF20260815120000-123",
		UserID:        1,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentUnpaid,
		TotalAmount:   decimal.RequireFromString("58.48"),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestListUserOrders_ClampsPaging(t *testing.T) {
	orders := &mockOrderRepo{listOrders: []domain.Order{*storedOrder()}, listTotal: 1}
	svc := NewOrderService(orders)

	paged, err := svc.ListUserOrders(context.Background(), 1, nil, nil, nil, -3, 500)

	require.NoError(t, err)
	assert.Equal(t, 1, paged.Page)
	assert.Equal(t, 50, paged.PageSize)
	assert.Equal(t, 1, paged.TotalItems)
	assert.Equal(t, 1, paged.TotalPages)
}

func TestListOrders_AdminPageSizeCap(t *testing.T) {
	orders := &mockOrderRepo{listOrders: nil, listTotal: 0}
	svc := NewOrderService(orders)

	paged, err := svc.ListOrders(context.Background(), repository.OrderFilter{Page: 1, PageSize: 1000})

	require.NoError(t, err)
	assert.Equal(t, 100, paged.PageSize)
	assert.NotNil(t, paged.Items, "empty result must serialize as [], not null")
	assert.Empty(t, paged.Items)
}

func TestGetUserOrder_ScopedToOwner(t *testing.T) {
	orders := &mockOrderRepo{getOrder: storedOrder()}
	svc := NewOrderService(orders)

	order, err := svc.GetUserOrder(context.Background(), 1, "GOF20260815120000-123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)

	_, err = svc.GetUserOrder(context.Background(), 2, "GOF20260815120000-123")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	orders := &mockOrderRepo{getOrder: storedOrder()}
	svc := NewOrderService(orders)

	order, err := svc.UpdateStatus(context.Background(), 7, domain.OrderConfirmed, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, order.Status)
	require.NotNil(t, orders.updatedStatus)
	assert.Equal(t, domain.OrderConfirmed, *orders.updatedStatus)
}

func TestUpdateStatus_SkippingStatesRejected(t *testing.T) {
	orders := &mockOrderRepo{getOrder: storedOrder()}
	svc := NewOrderService(orders)

	_, err := svc.UpdateStatus(context.Background(), 7, domain.OrderCompleted, nil)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Nil(t, orders.updatedStatus, "a rejected transition must not write")
}

func TestUpdateStatus_CancelledIsTerminal(t *testing.T) {
	cancelled := storedOrder()
	cancelled.Status = domain.OrderCancelled
	orders := &mockOrderRepo{getOrder: cancelled}
	svc := NewOrderService(orders)

	_, err := svc.UpdateStatus(context.Background(), 7, domain.OrderConfirmed, nil)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// re-cancelling is the idempotent exception
	order, err := svc.UpdateStatus(context.Background(), 7, domain.OrderCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, order.Status)
}

func TestUpdateStatus_InvalidEnumValues(t *testing.T) {
	orders := &mockOrderRepo{getOrder: storedOrder()}
	svc := NewOrderService(orders)

	_, err := svc.UpdateStatus(context.Background(), 7, domain.OrderStatus(42), nil)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	bad := domain.PaymentStatus(9)
	_, err = svc.UpdateStatus(context.Background(), 7, domain.OrderConfirmed, &bad)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateStatus_WithPaymentStatus(t *testing.T) {
	orders := &mockOrderRepo{getOrder: storedOrder()}
	svc := NewOrderService(orders)

	paid := domain.PaymentPaid
	order, err := svc.UpdateStatus(context.Background(), 7, domain.OrderConfirmed, &paid)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	orders := &mockOrderRepo{}
	svc := NewOrderService(orders)

	_, err := svc.UpdateStatus(context.Background(), 404, domain.OrderConfirmed, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetStats_PassesThrough(t *testing.T) {
	orders := &mockOrderRepo{stats: &repository.OrderStats{TotalOrders: 12}}
	svc := NewOrderService(orders)

	stats, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalOrders)
}

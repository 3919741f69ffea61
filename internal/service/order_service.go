package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/repository"
)

type PagedOrders struct {
	Items      []domain.Order `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalItems int            `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// OrderService covers order reading and status management after checkout.
// Orders are immutable snapshots; only status and payment status ever change.
type OrderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ListUserOrders pages through the caller's own orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, status *domain.OrderStatus, fromDate, toDate *time.Time, page, pageSize int) (*PagedOrders, error) {
	filter := repository.OrderFilter{
		UserID:   &userID,
		Status:   status,
		FromDate: fromDate,
		ToDate:   toDate,
		Page:     clampPage(page),
		PageSize: clampPageSize(pageSize, 50),
	}
	return s.list(ctx, filter)
}

// ListOrders is the admin listing with the full filter set.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) (*PagedOrders, error) {
	filter.Page = clampPage(filter.Page)
	filter.PageSize = clampPageSize(filter.PageSize, 100)
	return s.list(ctx, filter)
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter) (*PagedOrders, error) {
	orders, total, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &PagedOrders{
		Items:      orders,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

// GetUserOrder reads one of the caller's orders by code; other users' orders
// are indistinguishable from missing ones.
func (s *OrderService) GetUserOrder(ctx context.Context, userID int64, orderCode string) (*domain.Order, error) {
	order, err := s.orders.GetOrderByCode(ctx, orderCode, &userID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by code: %w", err)
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// UpdateStatus moves an order along the status state machine. Cancelled is a
// terminal state: the only legal "transition" out of it is the idempotent
// re-cancel. Payment status, when given, is updated alongside.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) (*domain.Order, error) {
	if !status.Valid() || (paymentStatus != nil && !paymentStatus.Valid()) {
		return nil, ErrInvalidStatusTransition
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, status, paymentStatus); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *OrderService) GetStats(ctx context.Context, fromDate, toDate *time.Time) (*repository.OrderStats, error) {
	stats, err := s.orders.GetOrderStats(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("get order stats: %w", err)
	}
	return stats, nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPageSize(size, max int) int {
	if size < 1 {
		return 10
	}
	if size > max {
		return max
	}
	return size
}

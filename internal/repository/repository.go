package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tsennguyen/gofoody/internal/domain"
)

var (
	ErrVariantNotFound        = errors.New("product variant not found")
	ErrCartLineNotFound       = errors.New("cart line not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrShippingMethodNotFound = errors.New("shipping method not found")
	ErrPaymentMethodNotFound  = errors.New("payment method not found")
	ErrOrderCodeTaken         = errors.New("order code already exists")
	ErrInsufficientStock      = errors.New("insufficient stock for order")
	ErrDuplicateCartLine      = errors.New("cart line for this variant already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type VariantRepository interface {
	GetVariant(ctx context.Context, variantID int64) (*domain.Variant, error)
}

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*domain.Cart, error)
	GetCartLineViews(ctx context.Context, cartID uuid.UUID) ([]domain.CartLineView, error)
	ListCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error)
	GetCartLine(ctx context.Context, cartID uuid.UUID, lineID int64) (*domain.CartLine, error)
	GetCartLineByVariant(ctx context.Context, cartID uuid.UUID, variantID int64) (*domain.CartLine, error)
	InsertCartLine(ctx context.Context, line *domain.CartLine) error
	UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, cartID uuid.UUID, lineID int64) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

// OrderFilter narrows order listings. Nil fields are not applied.
type OrderFilter struct {
	UserID        *int64
	Status        *domain.OrderStatus
	PaymentStatus *domain.PaymentStatus
	FromDate      *time.Time
	ToDate        *time.Time
	OrderCode     string // case-insensitive substring match
	Page          int
	PageSize      int
}

type OrderStats struct {
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	CompletedOrders  int             `json:"completed_orders"`
	CancelledOrders  int             `json:"cancelled_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TodayRevenue     decimal.Decimal `json:"today_revenue"`
	ThisMonthRevenue decimal.Decimal `json:"this_month_revenue"`
}

type OrderRepository interface {
	// CreateOrder runs the whole checkout conversion in one transaction:
	// order + item inserts, guarded stock decrements, cart-line deletion and
	// the outbox event. Any failure rolls the whole thing back.
	CreateOrder(ctx context.Context, order *domain.Order, cartID uuid.UUID) error
	GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOrderByCode(ctx context.Context, orderCode string, userID *int64) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) error
	GetOrderStats(ctx context.Context, fromDate, toDate *time.Time) (*OrderStats, error)
}

type MethodRepository interface {
	ListActiveShippingMethods(ctx context.Context) ([]domain.ShippingMethod, error)
	ListActivePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	GetActiveShippingMethod(ctx context.Context, id int64) (*domain.ShippingMethod, error)
	GetActivePaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
}

type UserRepository interface {
	GetUserEmail(ctx context.Context, userID int64) (*string, error)
}

// OutboxEvent is one pending order event waiting to be published.
type OutboxEvent struct {
	ID        uuid.UUID
	OrderID   int64
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID uuid.UUID) error
}

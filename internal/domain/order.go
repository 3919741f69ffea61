package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int16

const (
	OrderPending   OrderStatus = 0
	OrderConfirmed OrderStatus = 1
	OrderShipping  OrderStatus = 2
	OrderCompleted OrderStatus = 3
	OrderCancelled OrderStatus = 4
)

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderConfirmed:
		return "confirmed"
	case OrderShipping:
		return "shipping"
	case OrderCompleted:
		return "completed"
	case OrderCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s OrderStatus) Valid() bool {
	return s >= OrderPending && s <= OrderCancelled
}

// CanTransitionTo reports whether an order may move from s to next.
// Pending → Confirmed/Cancelled, Confirmed → Shipping/Cancelled,
// Shipping → Completed/Cancelled. Completed is terminal; Cancelled is
// terminal except for the idempotent Cancelled → Cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case OrderPending:
		return next == OrderConfirmed || next == OrderCancelled
	case OrderConfirmed:
		return next == OrderShipping || next == OrderCancelled
	case OrderShipping:
		return next == OrderCompleted || next == OrderCancelled
	default:
		return false
	}
}

type PaymentStatus int16

const (
	PaymentUnpaid   PaymentStatus = 0
	PaymentPaid     PaymentStatus = 1
	PaymentRefunded PaymentStatus = 2
)

func (s PaymentStatus) Valid() bool {
	return s >= PaymentUnpaid && s <= PaymentRefunded
}

// Order is the immutable snapshot created by a successful checkout.
// Invariant: TotalAmount = Subtotal + ShippingFee - DiscountAmount.
type Order struct {
	ID                   int64
	OrderCode            string
	UserID               int64
	CustomerName         string
	CustomerPhone        string
	CustomerEmail        *string
	ShippingAddressText  string
	ShippingMethodID     int64
	ShippingMethodName   *string
	PaymentMethodID      int64
	PaymentMethodName    *string
	Subtotal             decimal.Decimal
	ShippingFee          decimal.Decimal
	DiscountAmount       decimal.Decimal
	TotalAmount          decimal.Decimal
	RequiresColdShipping bool
	Status               OrderStatus
	PaymentStatus        PaymentStatus
	Note                 *string
	CreatedAt            time.Time
	UpdatedAt            *time.Time
	TotalItems           int
	Items                []OrderLine
}

// OrderLine snapshots product name, unit and unit price at checkout time so
// later catalog edits never alter historical orders.
// Invariant: LineTotal = UnitPrice * Quantity.
type OrderLine struct {
	ID               int64
	OrderID          int64
	ProductID        int64
	ProductVariantID int64
	ProductName      string
	Unit             string
	Quantity         int
	UnitPrice        decimal.Decimal
	LineTotal        decimal.Decimal
}

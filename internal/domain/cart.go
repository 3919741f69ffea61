package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the per-user mutable basket. One row per user, created lazily on
// first access and never deleted; checkout only clears its lines.
type Cart struct {
	ID        uuid.UUID
	UserID    int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// CartLine is one (variant, quantity) pair in a cart. At most one line exists
// per (cart, variant); adding the same variant again merges quantities.
type CartLine struct {
	ID               int64
	CartID           uuid.UUID
	ProductVariantID int64
	Quantity         int
	CreatedAt        time.Time
}

// CartLineView is a cart line joined with its live variant, as shown to the client.
type CartLineView struct {
	ID                  int64           `json:"id"`
	ProductID           int64           `json:"product_id"`
	ProductVariantID    int64           `json:"product_variant_id"`
	ProductName         string          `json:"product_name"`
	VariantName         string          `json:"variant_name"`
	Unit                string          `json:"unit"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	LineTotal           decimal.Decimal `json:"line_total"`
	RequireColdShipping bool            `json:"require_cold_shipping"`
	StockQuantity       int             `json:"stock_quantity"`
	MinOrderQuantity    int             `json:"min_order_quantity"`
	MaxOrderQuantity    *int            `json:"max_order_quantity,omitempty"`
}

type CartSummary struct {
	CartID               uuid.UUID       `json:"cart_id"`
	Items                []CartLineView  `json:"items"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	RequiresColdShipping bool            `json:"requires_cold_shipping"`
	TotalQuantity        int             `json:"total_quantity"`
}

// BuildCartSummary computes the aggregate view over joined cart lines:
// subtotal as the exact decimal sum of line totals, the cold-shipping flag
// as an OR over lines, and the total item count.
func BuildCartSummary(cartID uuid.UUID, lines []CartLineView) *CartSummary {
	summary := &CartSummary{
		CartID:   cartID,
		Items:    make([]CartLineView, 0, len(lines)),
		Subtotal: decimal.Zero,
	}
	for _, line := range lines {
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		summary.Subtotal = summary.Subtotal.Add(line.LineTotal)
		summary.TotalQuantity += line.Quantity
		summary.RequiresColdShipping = summary.RequiresColdShipping || line.RequireColdShipping
		summary.Items = append(summary.Items, line)
	}
	return summary
}

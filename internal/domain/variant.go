package domain

import "github.com/shopspring/decimal"

type VariantStatus int16

const (
	VariantInactive VariantStatus = 0
	VariantActive   VariantStatus = 1
)

// Variant is a purchasable SKU of a product: one size/unit/price/stock combination.
type Variant struct {
	ID                  int64
	ProductID           int64
	ProductName         string
	SKU                 string
	Name                string
	Unit                string
	Price               decimal.Decimal
	RequireColdShipping bool
	StockQuantity       int
	Status              VariantStatus
	MinOrderQuantity    int
	MaxOrderQuantity    *int // nil means unbounded
}

func (v *Variant) IsActive() bool {
	return v.Status == VariantActive
}

// ClampQuantity fits a requested quantity into the variant's order-size band.
// Requests below the minimum are raised, requests above the maximum are capped;
// being outside the band is never a rejection on its own.
func (v *Variant) ClampQuantity(quantity int) int {
	if quantity < v.MinOrderQuantity {
		quantity = v.MinOrderQuantity
	}
	if v.MaxOrderQuantity != nil && quantity > *v.MaxOrderQuantity {
		quantity = *v.MaxOrderQuantity
	}
	return quantity
}

package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClampQuantity(t *testing.T) {
	max := 10
	v := &Variant{MinOrderQuantity: 2, MaxOrderQuantity: &max}

	assert.Equal(t, 2, v.ClampQuantity(1))
	assert.Equal(t, 2, v.ClampQuantity(2))
	assert.Equal(t, 5, v.ClampQuantity(5))
	assert.Equal(t, 10, v.ClampQuantity(10))
	assert.Equal(t, 10, v.ClampQuantity(11))
}

func TestClampQuantity_NoMaximum(t *testing.T) {
	v := &Variant{MinOrderQuantity: 1}
	assert.Equal(t, 100000, v.ClampQuantity(100000))
}

func TestBuildCartSummary(t *testing.T) {
	cartID := uuid.New()
	lines := []CartLineView{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("12.50"), RequireColdShipping: true},
		{Quantity: 2, UnitPrice: decimal.RequireFromString("8.99")},
	}

	summary := BuildCartSummary(cartID, lines)

	assert.Equal(t, cartID, summary.CartID)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("55.48")))
	assert.True(t, summary.Items[0].LineTotal.Equal(decimal.RequireFromString("37.50")))
	assert.True(t, summary.RequiresColdShipping)
	assert.Equal(t, 5, summary.TotalQuantity)
}

func TestBuildCartSummary_Empty(t *testing.T) {
	summary := BuildCartSummary(uuid.New(), nil)

	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Subtotal.IsZero())
	assert.False(t, summary.RequiresColdShipping)
}

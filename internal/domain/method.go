package domain

import "github.com/shopspring/decimal"

type ShippingMethod struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	IsColdShipping bool            `json:"is_cold_shipping"`
	BaseFee        decimal.Decimal `json:"base_fee"`
	IsActive       bool            `json:"-"`
}

type PaymentMethod struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"-"`
}

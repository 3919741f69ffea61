package service

import "errors"

var (
	ErrInvalidQuantity         = errors.New("quantity must be greater than zero")
	ErrVariantNotFound         = errors.New("product variant not found")
	ErrVariantUnavailable      = errors.New("product variant is not available")
	ErrInsufficientStock       = errors.New("not enough stock")
	ErrCartLineNotFound        = errors.New("cart line not found")
	ErrEmptyCart               = errors.New("cart is empty, nothing to checkout")
	ErrCustomerInfoRequired    = errors.New("full name, phone and address line are required")
	ErrInvalidShippingMethod   = errors.New("shipping method invalid")
	ErrInvalidPaymentMethod    = errors.New("payment method invalid")
	ErrInvalidStatusTransition = errors.New("illegal order status transition")
	ErrOrderNotFound           = errors.New("order not found")
	ErrCheckoutFailed          = errors.New("checkout failed")
)

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tsennguyen/gofoody/internal/cache"
	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/repository"
)

// orderCodeAttempts bounds the regenerate-on-collision loop for order codes.
const orderCodeAttempts = 3

type CheckoutRequest struct {
	FullName         string
	Phone            string
	AddressLine      string
	Ward             string
	District         string
	City             string
	ShippingMethodID int64
	PaymentMethodID  int64
	Note             string
}

type OrderCreated struct {
	OrderID              int64           `json:"order_id"`
	OrderCode            string          `json:"order_code"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ShippingFee          decimal.Decimal `json:"shipping_fee"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	RequiresColdShipping bool            `json:"requires_cold_shipping"`
	CreatedAt            time.Time       `json:"created_at"`
}

// CheckoutService converts the caller's cart into an immutable order. The
// conversion itself (order insert, stock decrement, cart clear) runs in one
// store transaction; everything before it is validation against live state.
type CheckoutService struct {
	variants repository.VariantRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	methods  repository.MethodRepository
	users    repository.UserRepository
	cache    cache.SummaryCache
}

func NewCheckoutService(
	variants repository.VariantRepository,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	methods repository.MethodRepository,
	users repository.UserRepository,
	summaryCache cache.SummaryCache,
) *CheckoutService {
	return &CheckoutService{
		variants: variants,
		carts:    carts,
		orders:   orders,
		methods:  methods,
		users:    users,
		cache:    summaryCache,
	}
}

// Checkout validates the request, re-validates every cart line against live
// inventory, computes totals from live prices, and performs the atomic
// cart-to-order conversion. Time has usually passed since the cart was built,
// so the re-validation here, and the guarded decrement inside the
// transaction, are what keep stock from being oversold.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, req *CheckoutRequest) (*OrderCreated, error) {
	if strings.TrimSpace(req.FullName) == "" ||
		strings.TrimSpace(req.Phone) == "" ||
		strings.TrimSpace(req.AddressLine) == "" {
		return nil, ErrCustomerInfoRequired
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	lines, err := s.carts.ListCartLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	shippingMethod, err := s.methods.GetActiveShippingMethod(ctx, req.ShippingMethodID)
	if errors.Is(err, repository.ErrShippingMethodNotFound) {
		return nil, ErrInvalidShippingMethod
	}
	if err != nil {
		return nil, fmt.Errorf("get shipping method: %w", err)
	}

	paymentMethod, err := s.methods.GetActivePaymentMethod(ctx, req.PaymentMethodID)
	if errors.Is(err, repository.ErrPaymentMethodNotFound) {
		return nil, ErrInvalidPaymentMethod
	}
	if err != nil {
		return nil, fmt.Errorf("get payment method: %w", err)
	}

	// Re-validation pass: re-fetch each variant and check it against the line.
	// Other checkouts may have consumed stock since the cart was last touched.
	subtotal := decimal.Zero
	requiresCold := false
	items := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		variant, err := s.variants.GetVariant(ctx, line.ProductVariantID)
		if errors.Is(err, repository.ErrVariantNotFound) {
			return nil, ErrVariantUnavailable
		}
		if err != nil {
			return nil, fmt.Errorf("get variant: %w", err)
		}
		if !variant.IsActive() {
			return nil, ErrVariantUnavailable
		}
		if variant.StockQuantity < line.Quantity {
			return nil, ErrInsufficientStock
		}

		lineTotal := variant.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		requiresCold = requiresCold || variant.RequireColdShipping

		items = append(items, domain.OrderLine{
			ProductID:        variant.ProductID,
			ProductVariantID: variant.ID,
			ProductName:      variant.ProductName,
			Unit:             variant.Unit,
			Quantity:         line.Quantity,
			UnitPrice:        variant.Price,
			LineTotal:        lineTotal,
		})
	}

	shippingFee := shippingMethod.BaseFee
	discount := decimal.Zero
	total := subtotal.Add(shippingFee).Sub(discount)

	email, err := s.users.GetUserEmail(ctx, userID)
	if err != nil {
		slog.Warn("could not read customer email", "user_id", userID, "err", err)
	}

	order := &domain.Order{
		UserID:               userID,
		CustomerName:         req.FullName,
		CustomerPhone:        req.Phone,
		CustomerEmail:        email,
		ShippingAddressText:  buildAddress(req),
		ShippingMethodID:     shippingMethod.ID,
		PaymentMethodID:      paymentMethod.ID,
		Subtotal:             subtotal,
		ShippingFee:          shippingFee,
		DiscountAmount:       discount,
		TotalAmount:          total,
		RequiresColdShipping: requiresCold,
		Status:               domain.OrderPending,
		PaymentStatus:        domain.PaymentUnpaid,
		CreatedAt:            time.Now().UTC(),
		Items:                items,
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		order.Note = &note
	}

	for attempt := 1; ; attempt++ {
		order.OrderCode = GenerateOrderCode()
		err = s.orders.CreateOrder(ctx, order, cart.ID)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrOrderCodeTaken) && attempt < orderCodeAttempts {
			slog.Warn("order code collision, retrying", "order_code", order.OrderCode, "attempt", attempt)
			continue
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		slog.Error("checkout transaction failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	s.invalidateCache(userID)

	return &OrderCreated{
		OrderID:              order.ID,
		OrderCode:            order.OrderCode,
		Subtotal:             order.Subtotal,
		ShippingFee:          order.ShippingFee,
		TotalAmount:          order.TotalAmount,
		RequiresColdShipping: order.RequiresColdShipping,
		CreatedAt:            order.CreatedAt,
	}, nil
}

func (s *CheckoutService) ListShippingMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	return s.methods.ListActiveShippingMethods(ctx)
}

func (s *CheckoutService) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.methods.ListActivePaymentMethods(ctx)
}

func buildAddress(req *CheckoutRequest) string {
	parts := []string{req.AddressLine}
	for _, part := range []string{req.Ward, req.District, req.City} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func (s *CheckoutService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		slog.Warn("cart summary cache invalidate failed", "user_id", userID, "err", err)
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsennguyen/gofoody/internal/cache"
	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/repository"
)

// mockVariantRepo implements repository.VariantRepository over a map.
type mockVariantRepo struct {
	variants map[int64]*domain.Variant
	err      error
}

func (m *mockVariantRepo) GetVariant(_ context.Context, variantID int64) (*domain.Variant, error) {
	if m.err != nil {
		return nil, m.err
	}
	variant, ok := m.variants[variantID]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}
	copied := *variant
	return &copied, nil
}

// mockCartRepo implements repository.CartRepository in memory, with one cart
// per user like the real schema enforces.
type mockCartRepo struct {
	variants *mockVariantRepo
	carts    map[int64]*domain.Cart
	lines    []domain.CartLine
	nextID   int64
	err      error
}

func newMockCartRepo(variants *mockVariantRepo) *mockCartRepo {
	return &mockCartRepo{
		variants: variants,
		carts:    make(map[int64]*domain.Cart),
		nextID:   1,
	}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID int64) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	cart := &domain.Cart{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().UTC()}
	m.carts[userID] = cart
	return cart, nil
}

func (m *mockCartRepo) GetCartLineViews(_ context.Context, cartID uuid.UUID) ([]domain.CartLineView, error) {
	var views []domain.CartLineView
	for _, line := range m.lines {
		if line.CartID != cartID {
			continue
		}
		variant := m.variants.variants[line.ProductVariantID]
		views = append(views, domain.CartLineView{
			ID:                  line.ID,
			ProductID:           variant.ProductID,
			ProductVariantID:    variant.ID,
			ProductName:         variant.ProductName,
			VariantName:         variant.Name,
			Unit:                variant.Unit,
			UnitPrice:           variant.Price,
			Quantity:            line.Quantity,
			RequireColdShipping: variant.RequireColdShipping,
			StockQuantity:       variant.StockQuantity,
			MinOrderQuantity:    variant.MinOrderQuantity,
			MaxOrderQuantity:    variant.MaxOrderQuantity,
		})
	}
	return views, nil
}

func (m *mockCartRepo) ListCartLines(_ context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	for _, line := range m.lines {
		if line.CartID == cartID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (m *mockCartRepo) GetCartLine(_ context.Context, cartID uuid.UUID, lineID int64) (*domain.CartLine, error) {
	for _, line := range m.lines {
		if line.CartID == cartID && line.ID == lineID {
			copied := line
			return &copied, nil
		}
	}
	return nil, repository.ErrCartLineNotFound
}

func (m *mockCartRepo) GetCartLineByVariant(_ context.Context, cartID uuid.UUID, variantID int64) (*domain.CartLine, error) {
	for _, line := range m.lines {
		if line.CartID == cartID && line.ProductVariantID == variantID {
			copied := line
			return &copied, nil
		}
	}
	return nil, repository.ErrCartLineNotFound
}

func (m *mockCartRepo) InsertCartLine(_ context.Context, line *domain.CartLine) error {
	line.ID = m.nextID
	m.nextID++
	m.lines = append(m.lines, *line)
	return nil
}

func (m *mockCartRepo) UpdateCartLineQuantity(_ context.Context, lineID int64, quantity int) error {
	for i := range m.lines {
		if m.lines[i].ID == lineID {
			m.lines[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrCartLineNotFound
}

func (m *mockCartRepo) DeleteCartLine(_ context.Context, cartID uuid.UUID, lineID int64) error {
	for i, line := range m.lines {
		if line.CartID == cartID && line.ID == lineID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	kept := m.lines[:0]
	for _, line := range m.lines {
		if line.CartID != cartID {
			kept = append(kept, line)
		}
	}
	m.lines = kept
	return nil
}

// mockOrderRepo implements repository.OrderRepository. CreateOrder mirrors the
// real transaction: it either applies the stock decrement and cart clear in
// full, or fails leaving both untouched.
type mockOrderRepo struct {
	variants *mockVariantRepo
	carts    *mockCartRepo

	created        []*domain.Order
	nextID         int64
	codeCollisions int // first N CreateOrder calls fail with ErrOrderCodeTaken
	createErr      error
	listOrders     []domain.Order
	listTotal      int
	getOrder       *domain.Order
	getErr         error
	updatedStatus  *domain.OrderStatus
	updatedPayment *domain.PaymentStatus
	stats          *repository.OrderStats
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order, cartID uuid.UUID) error {
	if m.codeCollisions > 0 {
		m.codeCollisions--
		return repository.ErrOrderCodeTaken
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, item := range order.Items {
		variant := m.variants.variants[item.ProductVariantID]
		if variant == nil || !variant.IsActive() || variant.StockQuantity < item.Quantity {
			return repository.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		m.variants.variants[item.ProductVariantID].StockQuantity -= item.Quantity
	}
	_ = m.carts.ClearCart(context.Background(), cartID)

	m.nextID++
	order.ID = m.nextID
	m.created = append(m.created, order)
	return nil
}

func (m *mockOrderRepo) GetOrderByID(_ context.Context, orderID int64) (*domain.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOrder == nil || m.getOrder.ID != orderID {
		return nil, repository.ErrOrderNotFound
	}
	copied := *m.getOrder
	return &copied, nil
}

func (m *mockOrderRepo) GetOrderByCode(_ context.Context, orderCode string, userID *int64) (*domain.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOrder == nil || m.getOrder.OrderCode != orderCode {
		return nil, repository.ErrOrderNotFound
	}
	if userID != nil && m.getOrder.UserID != *userID {
		return nil, repository.ErrOrderNotFound
	}
	copied := *m.getOrder
	return &copied, nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context, _ repository.OrderFilter) ([]domain.Order, int, error) {
	return m.listOrders, m.listTotal, nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) error {
	if m.getOrder == nil || m.getOrder.ID != orderID {
		return repository.ErrOrderNotFound
	}
	m.updatedStatus = &status
	m.updatedPayment = paymentStatus
	m.getOrder.Status = status
	if paymentStatus != nil {
		m.getOrder.PaymentStatus = *paymentStatus
	}
	return nil
}

func (m *mockOrderRepo) GetOrderStats(_ context.Context, _, _ *time.Time) (*repository.OrderStats, error) {
	return m.stats, nil
}

// mockMethodRepo implements repository.MethodRepository over maps.
type mockMethodRepo struct {
	shipping map[int64]domain.ShippingMethod
	payment  map[int64]domain.PaymentMethod
}

func (m *mockMethodRepo) ListActiveShippingMethods(_ context.Context) ([]domain.ShippingMethod, error) {
	var methods []domain.ShippingMethod
	for _, method := range m.shipping {
		methods = append(methods, method)
	}
	return methods, nil
}

func (m *mockMethodRepo) ListActivePaymentMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	var methods []domain.PaymentMethod
	for _, method := range m.payment {
		methods = append(methods, method)
	}
	return methods, nil
}

func (m *mockMethodRepo) GetActiveShippingMethod(_ context.Context, id int64) (*domain.ShippingMethod, error) {
	method, ok := m.shipping[id]
	if !ok {
		return nil, repository.ErrShippingMethodNotFound
	}
	return &method, nil
}

func (m *mockMethodRepo) GetActivePaymentMethod(_ context.Context, id int64) (*domain.PaymentMethod, error) {
	method, ok := m.payment[id]
	if !ok {
		return nil, repository.ErrPaymentMethodNotFound
	}
	return &method, nil
}

// mockUserRepo implements repository.UserRepository.
type mockUserRepo struct {
	email *string
	err   error
}

func (m *mockUserRepo) GetUserEmail(_ context.Context, _ int64) (*string, error) {
	return m.email, m.err
}

// mockCache implements cache.SummaryCache. Guarded by a mutex because
// GetSummary writes entries from a goroutine.
type mockCache struct {
	mu      sync.Mutex
	entries map[int64]*domain.CartSummary
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[int64]*domain.CartSummary)}
}

func (m *mockCache) Get(_ context.Context, userID int64) (*domain.CartSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary, ok := m.entries[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return summary, nil
}

func (m *mockCache) Set(_ context.Context, userID int64, summary *domain.CartSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = summary
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	m.deletes++
	return nil
}

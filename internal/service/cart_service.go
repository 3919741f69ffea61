package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tsennguyen/gofoody/internal/cache"
	"github.com/tsennguyen/gofoody/internal/domain"
	"github.com/tsennguyen/gofoody/internal/repository"
)

// CartService owns the per-user cart lifecycle. Every operation works on the
// caller's single cart, created lazily on first access.
//
// Stock and order-size checks are read-then-decide against the state at the
// time of the call; no lock spans the check and the write. Stock is only
// authoritatively reserved inside the checkout transaction, which re-validates
// every line.
type CartService struct {
	variants repository.VariantRepository
	carts    repository.CartRepository
	cache    cache.SummaryCache
	sfg      singleflight.Group // Prevents cache stampede on summary reads
}

func NewCartService(variants repository.VariantRepository, carts repository.CartRepository, summaryCache cache.SummaryCache) *CartService {
	return &CartService{
		variants: variants,
		carts:    carts,
		cache:    summaryCache,
	}
}

// GetSummary returns the cart with per-line totals, the exact decimal
// subtotal, the cold-shipping flag and the total item count. Side-effect-free
// apart from lazy cart creation. Summaries are served from the cache when
// fresh; every mutation invalidates the cached entry.
func (s *CartService) GetSummary(ctx context.Context, userID int64) (*domain.CartSummary, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		summary, err := s.cache.Get(ctx, userID)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("cart summary cache get failed", "user_id", userID, "err", err)
		}

		summary, err = s.buildSummary(ctx, userID)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, summary); errSet != nil {
				slog.Warn("cart summary cache set failed", "user_id", userID, "err", errSet)
			}
		}()

		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CartSummary), nil
}

// AddItem puts quantity units of a variant into the cart. The requested
// quantity is clamped into the variant's [min, max] order band rather than
// rejected; only insufficient stock rejects. Adding a variant that is already
// in the cart merges into the existing line, re-clamped and re-checked.
func (s *CartService) AddItem(ctx context.Context, userID int64, variantID int64, quantity int) (*domain.CartSummary, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if errors.Is(err, repository.ErrVariantNotFound) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	if !variant.IsActive() {
		return nil, ErrVariantUnavailable
	}

	target := variant.ClampQuantity(quantity)
	if variant.StockQuantity < target {
		return nil, ErrInsufficientStock
	}

	existing, err := s.carts.GetCartLineByVariant(ctx, cart.ID, variantID)
	switch {
	case errors.Is(err, repository.ErrCartLineNotFound):
		line := &domain.CartLine{
			CartID:           cart.ID,
			ProductVariantID: variantID,
			Quantity:         target,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.carts.InsertCartLine(ctx, line); err != nil {
			return nil, fmt.Errorf("insert cart line: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("get cart line by variant: %w", err)
	default:
		merged := variant.ClampQuantity(existing.Quantity + target)
		if variant.StockQuantity < merged {
			return nil, ErrInsufficientStock
		}
		if err := s.carts.UpdateCartLineQuantity(ctx, existing.ID, merged); err != nil {
			return nil, fmt.Errorf("update cart line quantity: %w", err)
		}
	}

	s.invalidateCache(userID)
	return s.buildSummary(ctx, userID)
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes the
// line; otherwise the quantity is clamped into the variant's order band and
// checked against current stock.
func (s *CartService) UpdateItem(ctx context.Context, userID int64, lineID int64, quantity int) (*domain.CartSummary, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	line, err := s.carts.GetCartLine(ctx, cart.ID, lineID)
	if errors.Is(err, repository.ErrCartLineNotFound) {
		return nil, ErrCartLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart line: %w", err)
	}

	if quantity <= 0 {
		if err := s.carts.DeleteCartLine(ctx, cart.ID, lineID); err != nil {
			return nil, fmt.Errorf("delete cart line: %w", err)
		}
	} else {
		variant, err := s.variants.GetVariant(ctx, line.ProductVariantID)
		if errors.Is(err, repository.ErrVariantNotFound) {
			return nil, ErrVariantNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get variant: %w", err)
		}

		newQty := variant.ClampQuantity(quantity)
		if variant.StockQuantity < newQty {
			return nil, ErrInsufficientStock
		}
		if err := s.carts.UpdateCartLineQuantity(ctx, line.ID, newQty); err != nil {
			return nil, fmt.Errorf("update cart line quantity: %w", err)
		}
	}

	s.invalidateCache(userID)
	return s.buildSummary(ctx, userID)
}

// RemoveItem deletes a line. Removing an absent line is a silent no-op, so
// the call is idempotent.
func (s *CartService) RemoveItem(ctx context.Context, userID int64, lineID int64) (*domain.CartSummary, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	if err := s.carts.DeleteCartLine(ctx, cart.ID, lineID); err != nil {
		return nil, fmt.Errorf("delete cart line: %w", err)
	}

	s.invalidateCache(userID)
	return s.buildSummary(ctx, userID)
}

// Clear removes every line unconditionally. The cart row itself persists.
func (s *CartService) Clear(ctx context.Context, userID int64) (*domain.CartSummary, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	if err := s.carts.ClearCart(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	s.invalidateCache(userID)
	return s.buildSummary(ctx, userID)
}

func (s *CartService) buildSummary(ctx context.Context, userID int64) (*domain.CartSummary, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	views, err := s.carts.GetCartLineViews(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart line views: %w", err)
	}

	return domain.BuildCartSummary(cart.ID, views), nil
}

func (s *CartService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		slog.Warn("cart summary cache invalidate failed", "user_id", userID, "err", err)
	}
}

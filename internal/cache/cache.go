package cache

import (
	"context"
	"errors"

	"github.com/tsennguyen/gofoody/internal/domain"
)

// SummaryCache holds computed cart summaries keyed by user. Entries are
// invalidated on every cart mutation and on checkout, so a hit is at worst
// TTL-stale for a cart nobody touched.
type SummaryCache interface {
	Get(ctx context.Context, userID int64) (*domain.CartSummary, error)
	Set(ctx context.Context, userID int64, summary *domain.CartSummary) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")

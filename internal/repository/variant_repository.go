package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tsennguyen/gofoody/internal/domain"
)

func (r *Repository) GetVariant(ctx context.Context, variantID int64) (*domain.Variant, error) {
	query := `SELECT v.id, v.product_id, p.name, v.sku, v.name, v.unit, v.price,
	                 v.require_cold_shipping, v.stock_quantity, v.status,
	                 v.min_order_quantity, v.max_order_quantity
	          FROM product_variants v
	          JOIN products p ON p.id = v.product_id
	          WHERE v.id = $1`

	var variant domain.Variant
	var maxOrder sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, variantID).Scan(
		&variant.ID,
		&variant.ProductID,
		&variant.ProductName,
		&variant.SKU,
		&variant.Name,
		&variant.Unit,
		&variant.Price,
		&variant.RequireColdShipping,
		&variant.StockQuantity,
		&variant.Status,
		&variant.MinOrderQuantity,
		&maxOrder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query variant by id: %w", err)
	}

	if maxOrder.Valid {
		max := int(maxOrder.Int64)
		variant.MaxOrderQuantity = &max
	}

	return &variant, nil
}

func (r *Repository) GetUserEmail(ctx context.Context, userID int64) (*string, error) {
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user email: %w", err)
	}
	if !email.Valid {
		return nil, nil
	}
	return &email.String, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tsennguyen/gofoody/internal/domain"
)

// GetOrCreateCart returns the user's cart, creating the row on first access.
// A concurrent first access may race on the unique user_id index; the loser
// re-reads the winner's row.
func (r *Repository) GetOrCreateCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := r.getCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query cart by user id: %w", err)
	}

	newCart := &domain.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, insertErr := r.db.ExecContext(ctx,
		`INSERT INTO carts (id, user_id, created_at) VALUES ($1, $2, $3)`,
		newCart.ID, newCart.UserID, newCart.CreatedAt)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			cart, err = r.getCartByUserID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("re-read cart after conflict: %w", err)
			}
			return cart, nil
		}
		return nil, fmt.Errorf("insert cart: %w", insertErr)
	}

	return newCart, nil
}

func (r *Repository) getCartByUserID(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		cart.UpdatedAt = &updatedAt.Time
	}
	return &cart, nil
}

// GetCartLineViews reads every line joined with its live variant and product,
// in insertion order. Prices and stock are whatever the catalog says right now.
func (r *Repository) GetCartLineViews(ctx context.Context, cartID uuid.UUID) ([]domain.CartLineView, error) {
	query := `SELECT ci.id, p.id, v.id, p.name, v.name, v.unit, v.price, ci.quantity,
	                 v.require_cold_shipping, v.stock_quantity,
	                 v.min_order_quantity, v.max_order_quantity
	          FROM cart_items ci
	          JOIN product_variants v ON v.id = ci.product_variant_id
	          JOIN products p ON p.id = v.product_id
	          WHERE ci.cart_id = $1
	          ORDER BY ci.id`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart line views: %w", err)
	}
	defer rows.Close()

	var views []domain.CartLineView
	for rows.Next() {
		var view domain.CartLineView
		var maxOrder sql.NullInt64
		if err := rows.Scan(
			&view.ID,
			&view.ProductID,
			&view.ProductVariantID,
			&view.ProductName,
			&view.VariantName,
			&view.Unit,
			&view.UnitPrice,
			&view.Quantity,
			&view.RequireColdShipping,
			&view.StockQuantity,
			&view.MinOrderQuantity,
			&maxOrder,
		); err != nil {
			return nil, fmt.Errorf("scan cart line view: %w", err)
		}
		if maxOrder.Valid {
			max := int(maxOrder.Int64)
			view.MaxOrderQuantity = &max
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return views, nil
}

func (r *Repository) ListCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cart_id, product_variant_id, quantity, created_at
		 FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.CartID, &line.ProductVariantID, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lines, nil
}

func (r *Repository) GetCartLine(ctx context.Context, cartID uuid.UUID, lineID int64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.db.QueryRowContext(ctx,
		`SELECT id, cart_id, product_variant_id, quantity, created_at
		 FROM cart_items WHERE id = $1 AND cart_id = $2`,
		lineID, cartID).Scan(&line.ID, &line.CartID, &line.ProductVariantID, &line.Quantity, &line.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line: %w", err)
	}
	return &line, nil
}

// GetCartLineByVariant finds the existing line for a variant, if any, so the
// caller can merge quantities instead of creating a duplicate.
func (r *Repository) GetCartLineByVariant(ctx context.Context, cartID uuid.UUID, variantID int64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.db.QueryRowContext(ctx,
		`SELECT id, cart_id, product_variant_id, quantity, created_at
		 FROM cart_items WHERE cart_id = $1 AND product_variant_id = $2`,
		cartID, variantID).Scan(&line.ID, &line.CartID, &line.ProductVariantID, &line.Quantity, &line.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line by variant: %w", err)
	}
	return &line, nil
}

func (r *Repository) InsertCartLine(ctx context.Context, line *domain.CartLine) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (cart_id, product_variant_id, quantity, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		line.CartID, line.ProductVariantID, line.Quantity, line.CreatedAt).Scan(&line.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCartLine
		}
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, lineID)
	if err != nil {
		return fmt.Errorf("update cart line quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cart line quantity: %w", err)
	}
	if affected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

// DeleteCartLine is idempotent: deleting an absent line is not an error.
func (r *Repository) DeleteCartLine(ctx context.Context, cartID uuid.UUID, lineID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, lineID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *Repository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

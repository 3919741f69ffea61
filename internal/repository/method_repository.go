package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tsennguyen/gofoody/internal/domain"
)

func (r *Repository) ListActiveShippingMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, name, description, is_cold_shipping, base_fee, is_active
		 FROM shipping_methods WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query shipping methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.ShippingMethod
	for rows.Next() {
		method, err := scanShippingMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipping method: %w", err)
		}
		methods = append(methods, *method)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return methods, nil
}

func (r *Repository) GetActiveShippingMethod(ctx context.Context, id int64) (*domain.ShippingMethod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, description, is_cold_shipping, base_fee, is_active
		 FROM shipping_methods WHERE id = $1 AND is_active`, id)
	method, err := scanShippingMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShippingMethodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query shipping method: %w", err)
	}
	return method, nil
}

func scanShippingMethod(row interface{ Scan(...any) error }) (*domain.ShippingMethod, error) {
	var method domain.ShippingMethod
	var description sql.NullString
	err := row.Scan(&method.ID, &method.Code, &method.Name, &description,
		&method.IsColdShipping, &method.BaseFee, &method.IsActive)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		method.Description = &description.String
	}
	return &method, nil
}

func (r *Repository) ListActivePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, name, description, is_active
		 FROM payment_methods WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		method, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, *method)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return methods, nil
}

func (r *Repository) GetActivePaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, description, is_active
		 FROM payment_methods WHERE id = $1 AND is_active`, id)
	method, err := scanPaymentMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment method: %w", err)
	}
	return method, nil
}

func scanPaymentMethod(row interface{ Scan(...any) error }) (*domain.PaymentMethod, error) {
	var method domain.PaymentMethod
	var description sql.NullString
	err := row.Scan(&method.ID, &method.Code, &method.Name, &description, &method.IsActive)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		method.Description = &description.String
	}
	return &method, nil
}

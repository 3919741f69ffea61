package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/tsennguyen/gofoody/internal/domain"
)

const orderPlacedEventType = "order.placed"

type orderPlacedPayload struct {
	OrderID              int64             `json:"order_id"`
	OrderCode            string            `json:"order_code"`
	UserID               int64             `json:"user_id"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	ShippingFee          decimal.Decimal   `json:"shipping_fee"`
	TotalAmount          decimal.Decimal   `json:"total_amount"`
	RequiresColdShipping bool              `json:"requires_cold_shipping"`
	CreatedAt            time.Time         `json:"created_at"`
	Items                []orderPlacedItem `json:"items"`
}

type orderPlacedItem struct {
	ProductVariantID int64           `json:"product_variant_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// CreateOrder converts the cart into an order in a single transaction:
//
//  1. insert the order row (unique order_code),
//  2. insert one order_items row per cart line,
//  3. decrement each variant's stock, guarded by stock_quantity >= quantity,
//  4. delete the cart's lines,
//  5. write the order.placed outbox event.
//
// Zero rows affected by a guarded decrement means a concurrent checkout took
// the stock first; the transaction fails with ErrInsufficientStock and nothing
// is applied. An order_code collision fails with ErrOrderCodeTaken so the
// caller can retry with a fresh code.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order, cartID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	insertOrder := `INSERT INTO orders (order_code, user_id, customer_name, customer_phone, customer_email,
	                  shipping_address_text, shipping_method_id, payment_method_id,
	                  subtotal, shipping_fee, discount_amount, total_amount,
	                  requires_cold_shipping, status, payment_status, note, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	                RETURNING id`

	insertErr := tx.QueryRowContext(ctx, insertOrder,
		order.OrderCode,
		order.UserID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		order.ShippingAddressText,
		order.ShippingMethodID,
		order.PaymentMethodID,
		order.Subtotal,
		order.ShippingFee,
		order.DiscountAmount,
		order.TotalAmount,
		order.RequiresColdShipping,
		order.Status,
		order.PaymentStatus,
		order.Note,
		order.CreatedAt,
	).Scan(&order.ID)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrOrderCodeTaken
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	insertItem := `INSERT INTO order_items (order_id, product_id, product_variant_id, product_name,
	                 unit, quantity, unit_price, line_total)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	decrementStock := `UPDATE product_variants
	                   SET stock_quantity = stock_quantity - $1
	                   WHERE id = $2 AND status = $3 AND stock_quantity >= $1`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRowContext(ctx, insertItem,
			item.OrderID,
			item.ProductID,
			item.ProductVariantID,
			item.ProductName,
			item.Unit,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
		).Scan(&item.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		res, err := tx.ExecContext(ctx, decrementStock, item.Quantity, item.ProductVariantID, domain.VariantActive)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	if err := insertOrderPlacedEvent(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout transaction: %w", err)
	}
	return nil
}

func insertOrderPlacedEvent(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	payload := orderPlacedPayload{
		OrderID:              order.ID,
		OrderCode:            order.OrderCode,
		UserID:               order.UserID,
		Subtotal:             order.Subtotal,
		ShippingFee:          order.ShippingFee,
		TotalAmount:          order.TotalAmount,
		RequiresColdShipping: order.RequiresColdShipping,
		CreatedAt:            order.CreatedAt,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, orderPlacedItem{
			ProductVariantID: item.ProductVariantID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			LineTotal:        item.LineTotal,
		})
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order event payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_events (id, order_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), order.ID, orderPlacedEventType, payloadJSON, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

const orderColumns = `o.id, o.order_code, o.user_id, o.customer_name, o.customer_phone, o.customer_email,
	o.shipping_address_text, o.shipping_method_id, sm.name, o.payment_method_id, pm.name,
	o.subtotal, o.shipping_fee, o.discount_amount, o.total_amount,
	o.requires_cold_shipping, o.status, o.payment_status, o.note, o.created_at, o.updated_at,
	(SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi WHERE oi.order_id = o.id)`

const orderJoins = `FROM orders o
	LEFT JOIN shipping_methods sm ON sm.id = o.shipping_method_id
	LEFT JOIN payment_methods pm ON pm.id = o.payment_method_id`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var order domain.Order
	var email, shippingName, paymentName, note sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&order.ID,
		&order.OrderCode,
		&order.UserID,
		&order.CustomerName,
		&order.CustomerPhone,
		&email,
		&order.ShippingAddressText,
		&order.ShippingMethodID,
		&shippingName,
		&order.PaymentMethodID,
		&paymentName,
		&order.Subtotal,
		&order.ShippingFee,
		&order.DiscountAmount,
		&order.TotalAmount,
		&order.RequiresColdShipping,
		&order.Status,
		&order.PaymentStatus,
		&note,
		&order.CreatedAt,
		&updatedAt,
		&order.TotalItems,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		order.CustomerEmail = &email.String
	}
	if shippingName.Valid {
		order.ShippingMethodName = &shippingName.String
	}
	if paymentName.Valid {
		order.PaymentMethodName = &paymentName.String
	}
	if note.Valid {
		order.Note = &note.String
	}
	if updatedAt.Valid {
		order.UpdatedAt = &updatedAt.Time
	}
	return &order, nil
}

func (r *Repository) GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := "SELECT " + orderColumns + " " + orderJoins + " WHERE o.id = $1"
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := r.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByCode looks an order up by its human-readable code, trimmed and
// case-insensitive. A non-nil userID additionally scopes the lookup to that
// user, which is how customers read their own orders.
func (r *Repository) GetOrderByCode(ctx context.Context, orderCode string, userID *int64) (*domain.Order, error) {
	normalized := strings.ToLower(strings.TrimSpace(orderCode))

	query := "SELECT " + orderColumns + " " + orderJoins + " WHERE LOWER(o.order_code) = $1"
	args := []any{normalized}
	if userID != nil {
		query += " AND o.user_id = $2"
		args = append(args, *userID)
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by code: %w", err)
	}

	if err := r.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) loadOrderItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_variant_id, product_name, unit, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderLine
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductVariantID,
			&item.ProductName,
			&item.Unit,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

// ListOrders returns one page of orders matching the filter, newest first,
// plus the total match count. Items are not loaded for listings.
func (r *Repository) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error) {
	var conditions []string
	var args []any

	appendArg := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil {
		appendArg("o.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		appendArg("o.status = $%d", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		appendArg("o.payment_status = $%d", *filter.PaymentStatus)
	}
	if filter.FromDate != nil {
		appendArg("o.created_at >= $%d", *filter.FromDate)
	}
	if filter.ToDate != nil {
		appendArg("o.created_at <= $%d", *filter.ToDate)
	}
	if code := strings.ToLower(strings.TrimSpace(filter.OrderCode)); code != "" {
		appendArg("LOWER(o.order_code) LIKE $%d", "%"+code+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM orders o" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf("SELECT %s %s%s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, orderJoins, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, total, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) error {
	var res sql.Result
	var err error
	if paymentStatus != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE orders SET status = $1, payment_status = $2, updated_at = $3 WHERE id = $4`,
			status, *paymentStatus, time.Now().UTC(), orderID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
			status, time.Now().UTC(), orderID)
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) GetOrderStats(ctx context.Context, fromDate, toDate *time.Time) (*OrderStats, error) {
	var conditions []string
	var args []any
	if fromDate != nil {
		args = append(args, *fromDate)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if toDate != nil {
		args = append(args, *toDate)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	query := fmt.Sprintf(`SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = %d),
		COUNT(*) FILTER (WHERE status = %d),
		COUNT(*) FILTER (WHERE status = %d),
		COALESCE(SUM(total_amount) FILTER (WHERE status = %d), 0),
		COALESCE(SUM(total_amount) FILTER (WHERE status = %d AND created_at >= $%d AND created_at < $%d), 0),
		COALESCE(SUM(total_amount) FILTER (WHERE status = %d AND created_at >= $%d AND created_at < $%d), 0)
		FROM orders%s`,
		domain.OrderPending, domain.OrderCompleted, domain.OrderCancelled,
		domain.OrderCompleted,
		domain.OrderCompleted, len(args)+1, len(args)+2,
		domain.OrderCompleted, len(args)+3, len(args)+4,
		where)
	args = append(args, today, tomorrow, monthStart, nextMonth)

	var stats OrderStats
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.CompletedOrders,
		&stats.CancelledOrders,
		&stats.TotalRevenue,
		&stats.TodayRevenue,
		&stats.ThisMonthRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("query order stats: %w", err)
	}
	return &stats, nil
}

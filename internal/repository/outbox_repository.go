package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GetUnprocessedEvents returns up to limit outbox events that have not been
// published yet, oldest first.
func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, event_type, payload, created_at
		 FROM order_events WHERE processed_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.OrderID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET processed_at = $1 WHERE id = $2`, time.Now().UTC(), eventID)
	if err != nil {
		return fmt.Errorf("mark event as processed: %w", err)
	}
	return nil
}

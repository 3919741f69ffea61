package publisher

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tsennguyen/gofoody/internal/repository"
)

const eventBatchSize = 100

// OutboxPoller drains the order_events table and publishes each event to
// Kafka. Events stay unprocessed until the publish succeeds, so a broker
// outage delays delivery instead of losing it; consumers must tolerate
// duplicates.
type OutboxPoller struct {
	tick   time.Duration
	outbox repository.OutboxRepository
	writer *kafka.Writer
}

func NewOutboxPoller(outbox repository.OutboxRepository, topic string, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{tick: time.Second, outbox: outbox, writer: w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.outbox.GetUnprocessedEvents(ctx, eventBatchSize)
	if err != nil {
		slog.Error("failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range events {
		if err := p.publishToKafka(ctx, event); err != nil {
			slog.Error("failed to publish outbox event", "event_id", event.ID, "error", err)
			continue
		}

		if err := p.outbox.MarkEventAsProcessed(ctx, event.ID); err != nil {
			slog.Error("failed to mark outbox event as processed", "event_id", event.ID, "error", err)
			continue
		}
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *repository.OutboxEvent) error {
	msg := kafka.Message{
		// keyed by order id so events for one order stay ordered
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

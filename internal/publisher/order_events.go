package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/segmentio/kafka-go"
)

const orderEventsTopic = "order-events"

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEvents publishes order lifecycle events. Publishing is best-effort:
// a completed checkout is never failed because its event could not be
// written.
type OrderEvents struct {
	timeout time.Duration
	writer  messageWriter
}

func NewOrderEvents(brokers ...string) *OrderEvents {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  orderEventsTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OrderEvents{timeout: 5 * time.Second, writer: w}
}

// OrderPlaced emits the event for a freshly placed order, keyed by order id
// so events for one order stay ordered.
func (p *OrderEvents) OrderPlaced(ctx context.Context, order *domain.Order) {
	payload := map[string]interface{}{
		"event":        "order.placed",
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"items":        order.Items,
		"final_amount": order.FinalAmount,
		"currency":     order.Currency,
		"placed_at":    order.CreatedAt,
	}

	if err := p.publish(ctx, order.ID.String(), "order.placed", payload); err != nil {
		log.Printf("failed to publish order.placed for %v: %v", order.ID, err)
	}
}

// OrderStatusChanged emits an event after a successful advance or cancel.
func (p *OrderEvents) OrderStatusChanged(ctx context.Context, order *domain.Order) {
	payload := map[string]interface{}{
		"event":       "order.status_changed",
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"status":      order.Status,
		"updated_at":  order.LastUpdated,
	}

	if err := p.publish(ctx, order.ID.String(), "order.status_changed", payload); err != nil {
		log.Printf("failed to publish order.status_changed for %v: %v", order.ID, err)
	}
}

func (p *OrderEvents) publish(ctx context.Context, key, eventType string, payload map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payloadJSON,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	return p.writer.WriteMessages(writeCtx, msg)
}

func (p *OrderEvents) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}

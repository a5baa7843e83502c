package events

import (
	"context"
	"time"

	"payflow/internal/domain"
)

// LifecycleEvent is published whenever a payment's derived status
// changes. Consumers get the same view the API serves; the processor's
// records stay the source of truth.
type LifecycleEvent struct {
	OrderID    string          `json:"order_id"`
	Status     domain.UIStatus `json:"status"`
	Message    string          `json:"message"`
	Amount     float64         `json:"amount,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher emits lifecycle events. Publishing is best effort: a broker
// outage must never fail a payment flow.
type Publisher interface {
	PublishLifecycle(ctx context.Context, event LifecycleEvent)
	Close()
}

// NoopPublisher discards all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishLifecycle(ctx context.Context, event LifecycleEvent) {}

func (NoopPublisher) Close() {}

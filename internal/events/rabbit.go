package events

import (
	"context"
	"encoding/json"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RabbitPublisher publishes lifecycle events to a topic exchange with
// routing keys of the form payment.lifecycle.<status>.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger
}

var _ Publisher = (*RabbitPublisher)(nil)

// NewRabbitPublisher dials the broker and declares the exchange.
func NewRabbitPublisher(url, exchange string, log zerolog.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

// PublishLifecycle publishes one event. Failures are logged and dropped;
// the payment flow never blocks on the broker.
func (p *RabbitPublisher) PublishLifecycle(ctx context.Context, event LifecycleEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Msg("event_marshal_failed")
		return
	}

	routingKey := "payment.lifecycle." + strings.ToLower(string(event.Status))
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("routing_key", routingKey).Msg("event_publish_failed")
	}
}

// Close shuts down the channel and connection.
func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

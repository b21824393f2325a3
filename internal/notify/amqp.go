package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theirongolddev/streaklab/internal/logging"
	"github.com/theirongolddev/streaklab/internal/tracker"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RoutingKey is the topic every celebration is published under.
const RoutingKey = "habit.marked"

const publishTimeout = 5 * time.Second

// publisher is the part of *amqp.Channel that AMQP uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP publishes celebrations as JSON to a topic exchange.
type AMQP struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
	log      *zap.Logger
}

// DialAMQP connects to url and declares exchange as a durable topic
// exchange.
func DialAMQP(url, exchange string, log *zap.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	n := newAMQP(ch, exchange, log)
	n.conn = conn
	return n, nil
}

func newAMQP(ch publisher, exchange string, log *zap.Logger) *AMQP {
	return &AMQP{ch: ch, exchange: exchange, log: logging.OrNop(log)}
}

// Celebrate implements tracker.Celebrator.
func (n *AMQP) Celebrate(ctx context.Context, c tracker.Celebration) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = n.ch.PublishWithContext(ctx, n.exchange, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    c.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing celebration: %w", err)
	}
	n.log.Debug("published celebration", zap.String("exchange", n.exchange), zap.String("habit_id", c.HabitID))
	return nil
}

// Close closes the channel and connection.
func (n *AMQP) Close() error {
	if c, ok := n.ch.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits container notifications on a topic exchange.
// The routing key is the notification type.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   logger.Logger
}

// NewPublisher dials the broker and declares the exchange
func NewPublisher(url, exchange string, logger logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With("channel", "amqp"),
	}, nil
}

// Name returns the channel name
func (p *Publisher) Name() string {
	return "amqp"
}

// Send publishes the notification as JSON
func (p *Publisher) Send(ctx context.Context, n *entity.Notification) error {
	if err := p.PublishJSON(ctx, string(n.Type), n); err != nil {
		return err
	}
	p.logger.Debug("Notification published", "routingKey", n.Type, "containerNumber", n.Number)
	return nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ventas/config"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// rabbitMQPublisher implements EventPublisher on a single AMQP channel bound
// to one queue through the default exchange.
type rabbitMQPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// NewRabbitMQPublisher dials the broker and declares the target queue.
func NewRabbitMQPublisher(cfg *config.RabbitMQConfig, logger *slog.Logger) (service.EventPublisher, error) {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		return nil, errors.New("rabbitmq queue is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, errors.Wrap(err, "failed to open rabbitmq channel")
	}

	if _, err := ch.QueueDeclare(cfg.Queue, cfg.QueueDurable, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, errors.Wrapf(err, "failed to declare queue %s", cfg.Queue)
	}

	logger.Info("RabbitMQ publisher initialized", slog.String("queue", cfg.Queue))

	return &rabbitMQPublisher{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

// Publish sends the event as a persistent JSON message.
func (p *rabbitMQPublisher) Publish(ctx context.Context, event *service.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	headers := amqp.Table{"event_type": event.Type}
	if event.RequestID != "" {
		headers["request_id"] = event.RequestID
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish to rabbitmq")
	}

	p.logger.Debug("[RabbitMQ] Event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
	)

	return nil
}

// Close closes the channel and the connection.
func (p *rabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return errors.WithStack(p.conn.Close())
	}

	return nil
}

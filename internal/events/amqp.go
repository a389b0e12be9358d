package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Boluski2/lendsqr-admin/internal/config"
)

const publishTimeout = 5 * time.Second

// channel is the slice of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events to a topic exchange, routed by event type.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	closed   bool
}

// New returns an AMQP publisher when cfg names a broker and a NopPublisher otherwise.
func New(ctx context.Context, cfg config.EventsConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("event publishing disabled")
		return NopPublisher{}, nil
	}
	pub, err := DialAMQP(ctx, cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing events", "exchange", cfg.Exchange)
	return pub, nil
}

// DialAMQP connects to the broker and declares the durable topic exchange.
func DialAMQP(ctx context.Context, url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		return nil, errors.New("amqp exchange required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func newAMQPWithChannel(ch channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	ch, closed := p.ch, p.closed
	p.mu.Unlock()
	if closed || ch == nil {
		return errors.New("rabbitmq channel not available")
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return ch.PublishWithContext(publishCtx, p.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    evt.ID,
		Type:         evt.Type,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.OccurredAt,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

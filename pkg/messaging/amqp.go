package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const dialTimeout = 5 * time.Second

type AMQPConfig struct {
	URL      string
	Exchange string
}

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpPublisher struct {
	log           *logrus.Logger
	config        AMQPConfig
	mu            sync.Mutex
	conn          *amqp.Connection
	channel       publishChannel
	channelClosed chan *amqp.Error
	openChannel   func() (publishChannel, chan *amqp.Error, error)
	closed        bool
}

// NewAMQPPublisher connects and declares a durable topic exchange.
func NewAMQPPublisher(log *logrus.Logger, config AMQPConfig) (Publisher, error) {
	if config.URL == "" {
		return nil, errors.New("amqp url not configured")
	}
	if config.Exchange == "" {
		return nil, errors.New("amqp exchange not configured")
	}

	p := &amqpPublisher{log: log, config: config}
	p.openChannel = p.declareChannel
	if err := p.connect(); err != nil {
		return nil, err
	}

	log.WithField("exchange", config.Exchange).Info("Connected to AMQP broker")
	return p, nil
}

// connect must be called with mu held or before p is shared.
func (p *amqpPublisher) connect() error {
	conn, err := amqp.DialConfig(p.config.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP server: %w", err)
	}

	p.conn = conn
	if err := p.reopenChannel(); err != nil {
		conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// declareChannel opens a channel on the current connection and declares the exchange on it.
func (p *amqpPublisher) declareChannel() (publishChannel, chan *amqp.Error, error) {
	channel, err := p.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		p.config.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange %s: %w", p.config.Exchange, err)
	}

	closed := channel.NotifyClose(make(chan *amqp.Error, 1))
	return channel, closed, nil
}

// reopenChannel must be called with mu held.
func (p *amqpPublisher) reopenChannel() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	p.channel = nil

	channel, closed, err := p.openChannel()
	if err != nil {
		return err
	}
	p.channel = channel
	p.channelClosed = closed
	return nil
}

// channelOpen reports false once the broker has closed the channel.
func (p *amqpPublisher) channelOpen() bool {
	if p.channel == nil {
		return false
	}
	select {
	case <-p.channelClosed:
		return false
	default:
		return true
	}
}

// ensureOpen must be called with mu held.
func (p *amqpPublisher) ensureOpen() error {
	if p.conn == nil || p.conn.IsClosed() {
		p.log.Warn("AMQP connection lost, reconnecting")
		return p.connect()
	}
	if !p.channelOpen() {
		p.log.Warn("AMQP channel closed, reopening")
		return p.reopenChannel()
	}
	return nil
}

// send publishes once and, if the channel turned out to be closed, reopens
// it and tries one more time. It must be called with mu held.
func (p *amqpPublisher) send(routingKey string, msg amqp.Publishing) error {
	err := p.channel.Publish(p.config.Exchange, routingKey, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	p.log.Warn("AMQP channel closed during publish, reopening")
	if err := p.reopenChannel(); err != nil {
		return err
	}
	return p.channel.Publish(p.config.Exchange, routingKey, false, false, msg)
}

func (p *amqpPublisher) Publish(ctx context.Context, event Event) error {
	body, err := jsoniter.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("publisher closed")
	}

	if err := p.ensureOpen(); err != nil {
		return err
	}

	err = p.send(event.Type, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"exchange":   p.config.Exchange,
	}).Debug("Event published")

	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

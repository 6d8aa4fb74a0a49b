// Package queue_publisher publishes order events to RabbitMQ.  Publishing is
// decoupled from the request path: Publish only enqueues, and a background
// loop delivers.  Delivery errors are logged and never reach the caller.
package queue_publisher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	q "github.com/iliyamo/football-ticketing/internal/queue"
)

// ErrBufferFull is returned by Publish when the delivery loop is behind and
// the event had to be dropped.
var ErrBufferFull = errors.New("order event buffer full")

// RabbitPublisher implements queue.Publisher on top of a durable queue.
type RabbitPublisher struct {
	url     string
	log     logrus.FieldLogger
	events  chan q.OrderEvent
	deliver func(ctx context.Context, url string, ev q.OrderEvent) error

	drainTimeout time.Duration
}

// NewRabbitPublisher returns a publisher with room for buffer undelivered
// events.  Run must be started for anything to reach the broker.
func NewRabbitPublisher(url string, buffer int, log logrus.FieldLogger) *RabbitPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &RabbitPublisher{
		url:          url,
		log:          log,
		events:       make(chan q.OrderEvent, buffer),
		deliver:      publishOnce,
		drainTimeout: 2 * time.Second,
	}
}

// Publish enqueues ev without blocking.
func (p *RabbitPublisher) Publish(_ context.Context, ev q.OrderEvent) error {
	select {
	case p.events <- ev:
		return nil
	default:
		p.log.WithField("order_id", ev.OrderID).Warn("rabbitmq: buffer full, dropping order event")
		return ErrBufferFull
	}
}

// Run delivers queued events until ctx is cancelled, then flushes whatever
// is still buffered within drainTimeout.
func (p *RabbitPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case ev := <-p.events:
			p.send(ctx, ev)
		}
	}
}

func (p *RabbitPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), p.drainTimeout)
	defer cancel()
	for {
		select {
		case ev := <-p.events:
			if ctx.Err() != nil {
				p.log.WithField("pending", len(p.events)+1).Warn("rabbitmq: shutdown deadline hit, dropping order events")
				return
			}
			p.send(ctx, ev)
		default:
			return
		}
	}
}

func (p *RabbitPublisher) send(ctx context.Context, ev q.OrderEvent) {
	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.deliver(dctx, p.url, ev); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{"type": ev.Type, "order_id": ev.OrderID}).Error("rabbitmq: publish failed")
	}
}

// publishOnce dials the broker, makes sure the queue exists (idempotent)
// and publishes a single persistent message.
func publishOnce(ctx context.Context, url string, ev q.OrderEvent) error {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.OrderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",                 // default exchange
		q.OrderEventsQueue, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         ev.Type,
			Body:         body,
		})
}

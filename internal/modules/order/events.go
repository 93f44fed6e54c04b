package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

type Event interface{ Type() string }
type EventDispatcher interface{ Dispatch(event Event) error }

// OrderPlaced is raised after an order is stored in its partition.
type OrderPlaced struct {
	Order     Order  `json:"order"`
	Partition string `json:"partition"`
}

func (OrderPlaced) Type() string { return "order.placed" }

// LogDispatcher writes events to the service log.
type LogDispatcher struct{ Logger log.FieldLogger }

func (d LogDispatcher) Dispatch(event Event) error {
	entry := d.Logger.WithField("event", event.Type())
	if placed, ok := event.(OrderPlaced); ok {
		entry = entry.WithFields(log.Fields{
			"order_id": placed.Order.ID,
			"method":   placed.Order.Payment.Method,
			"total":    placed.Order.Totals.Total,
			"items":    len(placed.Order.Items),
		})
	}
	entry.Info("order event")
	return nil
}

// Dispatchers fans an event out to every dispatcher, returning the first
// error after all have run.
type Dispatchers []EventDispatcher

func (ds Dispatchers) Dispatch(event Event) error {
	var first error
	for _, d := range ds {
		if err := d.Dispatch(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AMQPPublisher publishes events as JSON to a fanout exchange.
type AMQPPublisher struct {
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
}

func NewAMQPPublisher(conn *amqp.Connection, exchange string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "opening amqp channel")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, errors.Wrapf(err, "declaring exchange %s", exchange)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, timeout: 5 * time.Second}, nil
}

func (p *AMQPPublisher) Dispatch(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", event.Type())
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, event.Type(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Type(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	return errors.Wrapf(err, "publishing %s", event.Type())
}

func (p *AMQPPublisher) Close() error { return p.ch.Close() }

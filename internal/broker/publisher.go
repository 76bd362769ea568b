// Package broker forwards reservation changes to a RabbitMQ queue so other
// systems (printing, messaging to families) can follow the schedule.
package broker

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sangjo/reservation-desk/internal/config"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Message is the JSON body of every published change.
type Message struct {
	Event          string    `json:"event"`
	Id             string    `json:"id"`
	ContractorName string    `json:"contractorName,omitempty"`
	DeceasedName   string    `json:"deceasedName,omitempty"`
	Date           string    `json:"date,omitempty"`
	Time           string    `json:"time,omitempty"`
	StaffName      string    `json:"staffName,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type Publisher struct {
	url   string
	queue string
	// send delivers one message; replaced in tests.
	send func(ctx context.Context, msg amqp.Publishing) error
}

func NewPublisher(cfg config.Broker) *Publisher {
	p := &Publisher{url: cfg.Url, queue: cfg.Queue}
	p.send = p.publish
	return p
}

// Subscribe forwards created, updated and deleted reservations from the bus.
// The returned function removes the subscriptions again.
func (p *Publisher) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	var unsubscribers []func()
	for _, eventType := range []event_bus.EventType{
		event_bus.ReservationCreated,
		event_bus.ReservationUpdated,
		event_bus.ReservationDeleted,
	} {
		unsubscribers = append(unsubscribers, event_bus.SubscribeTyped(bus, eventType, p.handle))
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}

func (p *Publisher) handle(ctx context.Context, e event_bus.EventT[event_bus.ReservationChanged]) error {
	msg, err := NewPublishing(e.Type, e.Data, e.Timestamp)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.send(ctx, msg); err != nil {
		log.Warnf("broker: failed to publish %s for reservation %s: %v", e.Type, e.Data.Id, err)
		return err
	}
	log.Debugf("broker: published %s for reservation %s", e.Type, e.Data.Id)
	return nil
}

func NewPublishing(eventType event_bus.EventType, data event_bus.ReservationChanged, occurredAt time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(Message{
		Event:          string(eventType),
		Id:             data.Id,
		ContractorName: data.ContractorName,
		DeceasedName:   data.DeceasedName,
		Date:           data.Date,
		Time:           data.Time,
		StaffName:      data.StaffName,
		OccurredAt:     occurredAt.UTC(),
	})
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    occurredAt.UTC(),
		Type:         string(eventType),
		Body:         body,
	}, nil
}

// publish dials per message. Changes are rare, so there is no connection to keep healthy.
func (p *Publisher) publish(ctx context.Context, msg amqp.Publishing) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
}

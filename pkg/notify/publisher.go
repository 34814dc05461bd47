// Package notify forwards saved and deleted entries to a message broker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Channel is the part of an AMQP channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Message is the JSON body of an entry.saved notification.
type Message struct {
	Event       string    `json:"event"`
	Kind        string    `json:"kind"`
	Id          string    `json:"id"`
	Created     bool      `json:"created"`
	UserId      string    `json:"userId"`
	Description string    `json:"descricao"`
	Total       string    `json:"valorTotal"`
	Installment bool      `json:"parcelado"`
	Count       int       `json:"qtdParcelas,omitempty"`
	EndDate     string    `json:"dataFimParcela,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

func newMessage(saved event_bus.EntrySaved) Message {
	m := Message{
		Event:       string(event_bus.EntrySavedEvent),
		Kind:        saved.Kind,
		Id:          saved.Id,
		Created:     saved.Created,
		UserId:      saved.UserId,
		Description: saved.Description,
		Total:       saved.Total,
		Installment: saved.Installment,
		Count:       saved.Count,
		SavedAt:     saved.SavedAt,
	}
	if !saved.EndDate.IsZero() {
		m.EndDate = saved.EndDate.Format("2006-01-02")
	}
	return m
}

// DeletedMessage is the JSON body of an entry.deleted notification.
type DeletedMessage struct {
	Event  string `json:"event"`
	Kind   string `json:"kind"`
	Id     string `json:"id"`
	UserId string `json:"userId"`
}

type Publisher struct {
	channel    Channel
	conn       *amqp091.Connection
	exchange   string
	savedKey   string
	deletedKey string
}

func NewPublisher(channel Channel, exchange, savedKey, deletedKey string) *Publisher {
	return &Publisher{channel: channel, exchange: exchange, savedKey: savedKey, deletedKey: deletedKey}
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(cfg config.Notify) (*Publisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	p := NewPublisher(channel, cfg.Exchange, cfg.RoutingKey, cfg.DeletedRoutingKey)
	p.conn = conn
	return p, nil
}

func (p *Publisher) Publish(ctx context.Context, saved event_bus.EntrySaved) error {
	return p.send(ctx, p.savedKey, amqp091.Publishing{
		Timestamp: saved.SavedAt,
		MessageId: saved.Kind + ":" + saved.Id,
	}, newMessage(saved))
}

func (p *Publisher) PublishDeleted(ctx context.Context, deleted event_bus.EntryDeleted) error {
	return p.send(ctx, p.deletedKey, amqp091.Publishing{
		MessageId: deleted.Kind + ":" + deleted.Id + ":deleted",
	}, DeletedMessage{
		Event:  string(event_bus.EntryDeletedEvent),
		Kind:   deleted.Kind,
		Id:     deleted.Id,
		UserId: deleted.UserId,
	})
}

func (p *Publisher) send(ctx context.Context, key string, msg amqp091.Publishing, body any) error {
	var err error
	msg.Body, err = json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	msg.ContentType = "application/json"
	msg.DeliveryMode = amqp091.Persistent

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.channel.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	log.Debugf("Published %s to exchange %s with key %s", msg.MessageId, p.exchange, key)
	return nil
}

// Subscribe publishes every entry.saved and entry.deleted event. A broker failure is
// logged and does not fail the request that raised the event.
func (p *Publisher) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubscribeSaved := event_bus.SubscribeTyped(bus, event_bus.EntrySavedEvent, func(e event_bus.EventT[event_bus.EntrySaved]) error {
		if err := p.Publish(e.Context(), e.Data); err != nil {
			log.Errorf("failed to notify %s %s: %v", e.Data.Kind, e.Data.Id, err)
		}
		return nil
	})
	unsubscribeDeleted := event_bus.SubscribeTyped(bus, event_bus.EntryDeletedEvent, func(e event_bus.EventT[event_bus.EntryDeleted]) error {
		if err := p.PublishDeleted(e.Context(), e.Data); err != nil {
			log.Errorf("failed to notify deletion of %s %s: %v", e.Data.Kind, e.Data.Id, err)
		}
		return nil
	})
	return func() {
		unsubscribeSaved()
		unsubscribeDeleted()
	}
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noop struct{}

func (noop) Close() error { return nil }

// Start subscribes a broker publisher to the bus. When notifications are disabled
// nothing is subscribed and the returned closer does nothing.
func Start(cfg config.Notify, bus *event_bus.EventBus) (interface{ Close() error }, error) {
	if !cfg.Enabled {
		log.Info("Entry notifications disabled")
		return noop{}, nil
	}
	p, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	p.Subscribe(bus)
	log.Infof("Publishing saved and deleted entries to exchange %s", cfg.Exchange)
	return p, nil
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	published []published
	err       error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

var saved = event_bus.EntrySaved{
	Kind:        "despesas",
	Id:          "21",
	Created:     true,
	UserId:      "42",
	Description: "Notebook",
	Total:       "1000",
	Installment: true,
	Count:       3,
	EndDate:     time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	SavedAt:     time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC),
}

func TestPublisher_Subscribe(t *testing.T) {
	t.Run("should publish saved entries as persistent JSON", func(t *testing.T) {
		// given
		channel := &fakeChannel{}
		bus := event_bus.NewEventBus()
		NewPublisher(channel, "painel", "entry.saved", "entry.deleted").Subscribe(bus)

		// when
		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntrySavedEvent, saved))

		// then
		require.NoError(t, err)
		require.Len(t, channel.published, 1)
		p := channel.published[0]
		assert.Equal(t, "painel", p.exchange)
		assert.Equal(t, "entry.saved", p.key)
		assert.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)
		assert.Equal(t, "application/json", p.msg.ContentType)
		assert.Equal(t, "despesas:21", p.msg.MessageId)
		var body map[string]any
		require.NoError(t, json.Unmarshal(p.msg.Body, &body))
		assert.Equal(t, "entry.saved", body["event"])
		assert.Equal(t, "21", body["id"])
		assert.Equal(t, "1000", body["valorTotal"])
		assert.Equal(t, 3.0, body["qtdParcelas"])
		assert.Equal(t, "2024-06-30", body["dataFimParcela"])
	})

	t.Run("should not fail the event when the broker is down", func(t *testing.T) {
		channel := &fakeChannel{err: errors.New("connection closed")}
		bus := event_bus.NewEventBus()
		NewPublisher(channel, "painel", "entry.saved", "entry.deleted").Subscribe(bus)

		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntrySavedEvent, saved))

		assert.NoError(t, err)
		assert.Empty(t, channel.published)
	})

	t.Run("should publish deleted entries with their own routing key", func(t *testing.T) {
		// given
		channel := &fakeChannel{}
		bus := event_bus.NewEventBus()
		NewPublisher(channel, "painel", "entry.saved", "entry.deleted").Subscribe(bus)

		// when
		err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntryDeletedEvent, event_bus.EntryDeleted{
			Kind:   "dividas",
			Id:     "9",
			UserId: "42",
		}))

		// then
		require.NoError(t, err)
		require.Len(t, channel.published, 1)
		p := channel.published[0]
		assert.Equal(t, "entry.deleted", p.key)
		assert.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)
		assert.Equal(t, "dividas:9:deleted", p.msg.MessageId)
		var body DeletedMessage
		require.NoError(t, json.Unmarshal(p.msg.Body, &body))
		assert.Equal(t, DeletedMessage{Event: "entry.deleted", Kind: "dividas", Id: "9", UserId: "42"}, body)
	})

	t.Run("should stop forwarding both events after unsubscribe", func(t *testing.T) {
		channel := &fakeChannel{}
		bus := event_bus.NewEventBus()
		unsubscribe := NewPublisher(channel, "painel", "entry.saved", "entry.deleted").Subscribe(bus)

		unsubscribe()
		require.NoError(t, bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntrySavedEvent, saved)))
		require.NoError(t, bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntryDeletedEvent, event_bus.EntryDeleted{Kind: "despesas", Id: "1"})))

		assert.Empty(t, channel.published)
	})

	t.Run("should leave out the end date of a single payment", func(t *testing.T) {
		channel := &fakeChannel{}
		single := saved
		single.Installment, single.Count, single.EndDate = false, 0, time.Time{}

		require.NoError(t, NewPublisher(channel, "painel", "entry.saved", "entry.deleted").Publish(context.Background(), single))

		var body map[string]any
		require.NoError(t, json.Unmarshal(channel.published[0].msg.Body, &body))
		assert.NotContains(t, body, "dataFimParcela")
		assert.NotContains(t, body, "qtdParcelas")
	})
}

func TestStart(t *testing.T) {
	t.Run("should do nothing when disabled", func(t *testing.T) {
		bus := event_bus.NewEventBus()

		closer, err := Start(config.Notify{Enabled: false, URL: "amqp://nowhere.invalid:1/"}, bus)

		require.NoError(t, err)
		assert.NoError(t, bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntrySavedEvent, saved)))
		assert.NoError(t, closer.Close())
	})
}

func TestPublisher_Close(t *testing.T) {
	channel := &fakeChannel{}

	require.NoError(t, NewPublisher(channel, "painel", "entry.saved", "entry.deleted").Close())

	assert.True(t, channel.closed)
}

// Package infra_redis_events is the change-notification transport: one
// pub/sub channel per room carrying JSON-encoded ChangeEvents. Delivery is
// at-most-once per connected subscriber, which is exactly the weak
// guarantee the reconciliation sweep is built to compensate for.
package infra_redis_events

import (
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
)

const channelPrefix = "room_events"

type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

func New(client *redis.Client) *Bus {
	return &Bus{
		client: client,
		logger: slog.Default(),
	}
}

func (b *Bus) Publish(roomID uuid.UUID, ev model.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(channel(roomID), payload).Err()
}

// Subscribe starts the push path for one room. The returned cancel closes
// the underlying subscription, which in turn closes the event channel.
func (b *Bus) Subscribe(roomID uuid.UUID) (<-chan model.ChangeEvent, func(), error) {
	pubsub := b.client.Subscribe(channel(roomID))
	if _, err := pubsub.Receive(); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan model.ChangeEvent, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Error("malformed change event dropped",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()))
				continue
			}
			out <- ev
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}

func channel(roomID uuid.UUID) string {
	return channelPrefix + ":" + roomID.String()
}

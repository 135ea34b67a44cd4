package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BusMessage is the wire format published once per chat event. Every
// instance, this one included, receives it back through its subscription;
// that round trip is the only broadcast path.
type BusMessage struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Room      string `json:"room"`
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
}

// Bus is the Redis pub/sub broadcast layer shared by all instances.
type Bus struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

func NewBus(rdb *redis.Client, channel string, log zerolog.Logger) *Bus {
	return &Bus{rdb: rdb, channel: channel, log: log}
}

// Publish emits one chat event onto the bus. Role defaults to "user".
func (b *Bus) Publish(ctx context.Context, user, text, room, role string) error {
	if role == "" {
		role = RoleUser
	}
	payload, err := json.Marshal(BusMessage{
		User:      user,
		Text:      text,
		Room:      room,
		Role:      role,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode bus message: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe consumes the chat channel until the context is cancelled,
// handing every raw payload to handle. Delivery is at-least-once from the
// consumer's point of view; the deduplicator downstream makes it
// exactly-once locally.
func (b *Bus) Subscribe(ctx context.Context, handle func(payload []byte)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handle([]byte(msg.Payload))
			}
		}
	}()
	return nil
}

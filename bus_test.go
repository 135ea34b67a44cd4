package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewBus(rdb, "chat", zerolog.Nop())
}

func TestBus_PublishSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	if err := bus.Subscribe(ctx, func(payload []byte) {
		received <- payload
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "alice", "hello", "lobby", RoleUser); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case payload := <-received:
		var msg BusMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("payload not JSON: %v", err)
		}
		if msg.User != "alice" || msg.Text != "hello" || msg.Room != "lobby" || msg.Role != RoleUser {
			t.Errorf("round-tripped message = %+v", msg)
		}
		if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
			t.Errorf("timestamp %q not RFC3339: %v", msg.Timestamp, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no bus delivery within 2s")
	}
}

func TestBus_RoleDefaultsToUser(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []byte, 1)
	if err := bus.Subscribe(ctx, func(payload []byte) { received <- payload }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "mcp", "generated reply", "lobby", ""); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case payload := <-received:
		var msg BusMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Role != RoleUser {
			t.Errorf("role = %q, want default %q", msg.Role, RoleUser)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no bus delivery within 2s")
	}
}

func TestBus_SubscribeStopsOnCancel(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	if err := bus.Subscribe(ctx, func([]byte) {}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	// Publishing after cancel must not panic or block.
	pubCtx, pubCancel := context.WithTimeout(context.Background(), time.Second)
	defer pubCancel()
	_ = bus.Publish(pubCtx, "alice", "late", "lobby", RoleUser)
}

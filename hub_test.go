package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testHub() *Hub {
	return NewHub("lobby", zerolog.Nop())
}

func TestHub_RoomOfDefaults(t *testing.T) {
	hub := testHub()

	if got := hub.RoomOf("unknown-conn"); got != "lobby" {
		t.Errorf("RoomOf(unknown) = %q, want default room", got)
	}
}

func TestHub_DeliverToRoomMembers(t *testing.T) {
	hub := testHub()

	c1 := &Client{connID: "conn-1", username: "alice", send: make(chan []byte, 10)}
	c2 := &Client{connID: "conn-2", username: "bob", send: make(chan []byte, 10)}
	hub.roomFor("lobby").Add(c1)
	hub.roomFor("games").Add(c2)

	hub.Deliver("lobby", []byte("[alice] hi"))

	select {
	case msg := <-c1.send:
		if string(msg) != "[alice] hi" {
			t.Errorf("c1 got %q", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("c1 did not receive message")
	}

	select {
	case <-c2.send:
		t.Error("c2 in another room should not receive")
	default:
	}
}

func TestHub_DeliverUnknownRoomIsNoop(t *testing.T) {
	hub := testHub()
	hub.Deliver("nowhere", []byte("hello")) // must not panic
}

func TestHub_MoveClient(t *testing.T) {
	hub := testHub()

	c := &Client{connID: "conn-1", username: "alice", send: make(chan []byte, 10)}
	hub.roomFor("lobby").Add(c)
	hub.mu.Lock()
	hub.memberOf[c.connID] = "lobby"
	hub.mu.Unlock()

	hub.moveClient(c, "games")

	if got := hub.RoomOf("conn-1"); got != "games" {
		t.Errorf("RoomOf after move = %q, want games", got)
	}
	if hub.ClientCount("games") != 1 {
		t.Errorf("games count = %d, want 1", hub.ClientCount("games"))
	}
	if hub.ClientCount("lobby") != 0 {
		t.Errorf("lobby count = %d, want 0", hub.ClientCount("lobby"))
	}

	// The join notice is private to the moved client.
	select {
	case msg := <-c.send:
		if string(msg) != "[system] Joined room: games" {
			t.Errorf("join notice = %q", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("no join notice received")
	}
}

func TestHub_EmptyRoomIsDropped(t *testing.T) {
	hub := testHub()

	c := &Client{connID: "conn-1", username: "alice", send: make(chan []byte, 10)}
	hub.roomFor("games").Add(c)
	hub.mu.Lock()
	hub.memberOf[c.connID] = "games"
	hub.mu.Unlock()

	hub.removeClient(c)

	if hub.RoomCount() != 0 {
		t.Errorf("room count = %d, want 0 after last client left", hub.RoomCount())
	}
}

func TestHub_RunAndShutdown(t *testing.T) {
	hub := testHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	// Give it a moment to start
	time.Sleep(10 * time.Millisecond)

	cancel()

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("hub.Run did not return after cancel")
	}
}

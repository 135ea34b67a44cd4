package main

import (
	"sync"
	"time"
)

// Room holds the clients currently joined on this instance. Delivery here
// is strictly local: cross-instance fan-out happens on the broadcast bus,
// never by re-sending from a room.
type Room struct {
	id           string
	mu           sync.RWMutex
	clients      map[string]*Client
	lastActivity time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		id:           id,
		clients:      make(map[string]*Client),
		lastActivity: time.Now(),
	}
}

func (r *Room) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.connID] = c
	r.lastActivity = time.Now()
}

func (r *Room) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c.connID)
	r.lastActivity = time.Now()
}

func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Room) LastActivity() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActivity
}

// Deliver sends a line to every client in the room, the sender included;
// a client only ever sees its own message after it came back through the
// bus, which keeps all instances consistent.
func (r *Room) Deliver(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActivity = time.Now()
	for _, c := range r.clients {
		select {
		case c.send <- data:
		default:
			// Client's send buffer full — drop message
		}
	}
}

func (r *Room) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.Close()
	}
}

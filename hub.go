package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// roomIdleTimeout is how long an empty-but-kept room may sit before the
// janitor tick reclaims it. Connection rooms are cheap; this only bounds
// the map.
const roomIdleTimeout = time.Hour

// Hub owns the per-room client registries on this instance. Register,
// unregister and join requests are serialized through the run loop;
// delivery and queries take the lock directly.
type Hub struct {
	defaultRoom string
	log         zerolog.Logger

	mu       sync.RWMutex
	rooms    map[string]*Room
	memberOf map[string]string // connID → room id

	registerCh   chan *Client
	unregisterCh chan *Client
	joinCh       chan joinReq
}

type joinReq struct {
	client *Client
	room   string
}

func NewHub(defaultRoom string, log zerolog.Logger) *Hub {
	return &Hub{
		defaultRoom:  defaultRoom,
		log:          log,
		rooms:        make(map[string]*Room),
		memberOf:     make(map[string]string),
		registerCh:   make(chan *Client, 64),
		unregisterCh: make(chan *Client, 64),
		joinCh:       make(chan joinReq, 64),
	}
}

func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.registerCh:
			h.addClient(client)

		case client := <-h.unregisterCh:
			h.removeClient(client)

		case req := <-h.joinCh:
			h.moveClient(req.client, req.room)

		case <-ticker.C:
			h.cleanupIdleRooms()
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.registerCh <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregisterCh <- c
}

// Join moves a client into another room (created on demand).
func (h *Hub) Join(c *Client, room string) {
	if room == "" {
		room = h.defaultRoom
	}
	h.joinCh <- joinReq{client: c, room: room}
}

// RoomOf returns the room a connection is currently joined to.
func (h *Hub) RoomOf(connID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.memberOf[connID]; ok {
		return room
	}
	return h.defaultRoom
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[roomID]; ok {
		return room.ClientCount()
	}
	return 0
}

// Deliver sends a line to all clients joined to the room on this instance
// only. Messages arriving here already went through the bus and the
// deduplicator; re-publishing would create a feedback loop.
func (h *Hub) Deliver(roomID string, data []byte) {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	room.Deliver(data)
}

func (h *Hub) addClient(c *Client) {
	room := h.roomFor(h.defaultRoom)

	h.mu.Lock()
	h.memberOf[c.connID] = h.defaultRoom
	h.mu.Unlock()

	room.Add(c)
	h.log.Info().Str("user", c.username).Str("conn", c.connID[:8]).Msg("client connected")

	go c.ReadPump()
	go c.WritePump()

	c.SendText("[system] Welcome " + c.username + "!")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	roomID, ok := h.memberOf[c.connID]
	delete(h.memberOf, c.connID)
	var room *Room
	if ok {
		room = h.rooms[roomID]
	}
	h.mu.Unlock()

	if room != nil {
		room.Remove(c)
		h.dropIfEmpty(roomID)
	}

	h.log.Info().Str("user", c.username).Msg("client disconnected")
}

func (h *Hub) moveClient(c *Client, newRoom string) {
	h.mu.Lock()
	oldRoom, ok := h.memberOf[c.connID]
	h.memberOf[c.connID] = newRoom
	h.mu.Unlock()

	if ok && oldRoom != "" {
		if room := h.room(oldRoom); room != nil {
			room.Remove(c)
			h.dropIfEmpty(oldRoom)
		}
	}

	h.roomFor(newRoom).Add(c)
	h.log.Info().Str("user", c.username).Str("room", newRoom).Msg("client joined room")

	c.SendText("[system] Joined room: " + newRoom)
}

func (h *Hub) room(id string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[id]
}

// roomFor returns the room, creating it if needed.
func (h *Hub) roomFor(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[id]
	if !ok {
		room = NewRoom(id)
		h.rooms[id] = room
	}
	return room
}

func (h *Hub) dropIfEmpty(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[id]; ok && room.ClientCount() == 0 {
		delete(h.rooms, id)
		h.log.Debug().Str("room", id).Msg("room destroyed (no clients)")
	}
}

func (h *Hub) cleanupIdleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for id, room := range h.rooms {
		if room.ClientCount() == 0 && now.Sub(room.LastActivity()) > roomIdleTimeout {
			delete(h.rooms, id)
			h.log.Info().Str("room", id).Msg("room cleaned up (idle timeout)")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range h.rooms {
		room.CloseAll()
	}
	h.rooms = make(map[string]*Room)
	h.memberOf = make(map[string]string)
}

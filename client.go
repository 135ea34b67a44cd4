package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 60 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 512
)

// clientEvent is the inbound frame format. A frame that is not valid JSON
// is treated as plain chat text so dumb clients still work.
type clientEvent struct {
	Type string `json:"type"` // "join" or "chat"
	Room string `json:"room,omitempty"`
	Text string `json:"text,omitempty"`
}

type Client struct {
	hub      *Hub
	chat     *ChatService
	conn     *websocket.Conn
	connID   string
	username string
	ip       string
	log      zerolog.Logger
	send     chan []byte

	closeOnce sync.Once
}

func NewClient(hub *Hub, chat *ChatService, conn *websocket.Conn, connID, username, ip string, log zerolog.Logger) *Client {
	return &Client{
		hub:      hub,
		chat:     chat,
		conn:     conn,
		connID:   connID,
		username: username,
		ip:       ip,
		log:      log,
		send:     make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Str("user", c.username).Msg("read error")
			}
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			ev = clientEvent{Type: "chat", Text: string(message)}
		}

		switch ev.Type {
		case "join":
			c.hub.Join(c, ev.Room)
		case "chat":
			c.chat.HandleChat(c, ev.Text)
		default:
			c.log.Debug().Str("type", ev.Type).Msg("unknown client event")
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendText queues a private line for this client only, dropping it if the
// send buffer is full.
func (c *Client) SendText(line string) {
	select {
	case c.send <- []byte(line):
	default:
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

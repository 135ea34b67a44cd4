package main

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ChatService routes inbound chat: commands are answered privately,
// everything else is persisted and published once onto the bus. It never
// emits to local clients directly; delivery always comes back through
// the bus and the deduplicator, so every instance broadcasts consistently.
type ChatService struct {
	hub   *Hub
	bus   *Bus
	store *Store // nil when persistence is disabled
	score *ScoreService
	ai    *AIService
	log   zerolog.Logger
}

func NewChatService(hub *Hub, bus *Bus, store *Store, score *ScoreService, ai *AIService, log zerolog.Logger) *ChatService {
	return &ChatService{hub: hub, bus: bus, store: store, score: score, ai: ai, log: log}
}

// HandleChat processes one chat line from a connected client.
func (s *ChatService) HandleChat(c *Client, raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room := s.hub.RoomOf(c.connID)

	if s.score.IsCommand(text) {
		s.score.HandleCommand(ctx, c, room, text)
		return
	}

	if s.store != nil {
		if err := s.store.InsertMessage(ctx, c.connID, text, room); err != nil {
			s.log.Warn().Err(err).Msg("persist message failed")
		}
	}

	if err := s.bus.Publish(ctx, c.username, text, room, RoleUser); err != nil {
		s.log.Error().Err(err).Str("room", room).Msg("publish failed, message dropped this round")
		return
	}

	// Explicit mention of the bot triggers a reply directly, outside the
	// ambient probability path.
	if s.ai.ShouldTrigger(text) {
		s.ai.TriggerResponse(room, []string{text}, c.username)
	}
}

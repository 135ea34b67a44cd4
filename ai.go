package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AITrigger requests a generated reply from the external AI collaborator.
// Implementations are best-effort: the call may fail silently and callers
// never learn the outcome.
type AITrigger interface {
	TriggerResponse(room string, recent []string, user string)
}

// AIService posts trigger events to the MCP endpoint. The eventual reply,
// if any, re-enters the system through the broadcast bus as a bot message;
// this client never waits for it.
type AIService struct {
	url      string
	triggers []string
	client   *http.Client
	log      zerolog.Logger
}

func NewAIService(url string, triggers []string, log zerolog.Logger) *AIService {
	return &AIService{
		url:      url,
		triggers: triggers,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
	}
}

type triggerEvent struct {
	Room   string   `json:"room"`
	Recent []string `json:"recent"`
	User   string   `json:"user"`
}

// TriggerResponse fires the request on its own goroutine and returns
// immediately. Failures are logged and swallowed so a slow or dead AI
// backend never stalls chat handling or scheduler bookkeeping.
func (s *AIService) TriggerResponse(room string, recent []string, user string) {
	body, err := json.Marshal(triggerEvent{Room: room, Recent: recent, User: user})
	if err != nil {
		s.log.Error().Err(err).Msg("encode trigger event")
		return
	}

	go func() {
		resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
		if err != nil {
			s.log.Warn().Err(err).Str("room", room).Msg("ai trigger failed")
			return
		}
		resp.Body.Close()
	}()
}

// ShouldTrigger reports whether the text explicitly addresses the bot
// (contains any configured trigger word).
func (s *AIService) ShouldTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range s.triggers {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

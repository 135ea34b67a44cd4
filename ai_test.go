package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAIService_ShouldTrigger(t *testing.T) {
	ai := NewAIService("http://unused", []string{"imposter", "@bot"}, zerolog.Nop())

	cases := map[string]bool{
		"hey imposter what's up": true,
		"ask @bot about it":      true,
		"IMPOSTER!":              true,
		"just chatting":          false,
		"":                       false,
	}
	for text, want := range cases {
		if got := ai.ShouldTrigger(text); got != want {
			t.Errorf("ShouldTrigger(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestAIService_TriggerResponsePostsEvent(t *testing.T) {
	received := make(chan triggerEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var ev triggerEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Errorf("bad trigger body: %v", err)
		}
		received <- ev
	}))
	defer srv.Close()

	ai := NewAIService(srv.URL, nil, zerolog.Nop())
	ai.TriggerResponse("lobby", []string{"hi", "anyone here?"}, "system")

	select {
	case ev := <-received:
		if ev.Room != "lobby" || ev.User != "system" || len(ev.Recent) != 2 {
			t.Errorf("trigger event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger request within 2s")
	}
}

func TestAIService_TriggerFailureIsSilent(t *testing.T) {
	// Nothing listens here; the call must neither block nor panic.
	ai := NewAIService("http://127.0.0.1:1", nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		ai.TriggerResponse("lobby", []string{"hi"}, "system")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TriggerResponse blocked the caller")
	}
}

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestScore(t *testing.T) *ScoreService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewScoreService(rdb, "leaderboard", zerolog.Nop())
}

func TestScore_IncrementAndGet(t *testing.T) {
	s := newTestScore(t)
	ctx := context.Background()

	got, err := s.IncrementScore(ctx, "lobby", "alice", 3)
	if err != nil {
		t.Fatalf("IncrementScore: %v", err)
	}
	if got != 3 {
		t.Errorf("new score = %g, want 3", got)
	}

	got, err = s.IncrementScore(ctx, "lobby", "alice", -1)
	if err != nil {
		t.Fatalf("IncrementScore: %v", err)
	}
	if got != 2 {
		t.Errorf("after decrement = %g, want 2", got)
	}

	score, err := s.UserScore(ctx, "lobby", "alice")
	if err != nil {
		t.Fatalf("UserScore: %v", err)
	}
	if score != 2 {
		t.Errorf("UserScore = %g, want 2", score)
	}
}

func TestScore_AbsentPlayerIsZero(t *testing.T) {
	s := newTestScore(t)

	score, err := s.UserScore(context.Background(), "lobby", "nobody")
	if err != nil {
		t.Fatalf("UserScore: %v", err)
	}
	if score != 0 {
		t.Errorf("absent player score = %g, want 0", score)
	}
}

func TestScore_SetOverwrites(t *testing.T) {
	s := newTestScore(t)
	ctx := context.Background()

	if _, err := s.IncrementScore(ctx, "lobby", "alice", 5); err != nil {
		t.Fatal(err)
	}
	if err := s.SetScore(ctx, "lobby", "alice", 42); err != nil {
		t.Fatalf("SetScore: %v", err)
	}

	score, _ := s.UserScore(ctx, "lobby", "alice")
	if score != 42 {
		t.Errorf("score after set = %g, want 42", score)
	}
}

func TestScore_LeaderboardOrderAndPagination(t *testing.T) {
	s := newTestScore(t)
	ctx := context.Background()

	for player, score := range map[string]float64{
		"alice": 30, "bob": 10, "carol": 20, "dave": 40,
	} {
		if err := s.SetScore(ctx, "lobby", player, score); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := s.Leaderboard(ctx, "lobby", 2, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "dave" || rows[1].Name != "alice" {
		t.Errorf("top 2 = %v, want dave then alice", rows)
	}

	rows, err = s.Leaderboard(ctx, "lobby", 2, 2)
	if err != nil {
		t.Fatalf("Leaderboard offset: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "carol" || rows[1].Name != "bob" {
		t.Errorf("next 2 = %v, want carol then bob", rows)
	}
}

func TestScore_RoomsAreIsolated(t *testing.T) {
	s := newTestScore(t)
	ctx := context.Background()

	if _, err := s.IncrementScore(ctx, "lobby", "alice", 7); err != nil {
		t.Fatal(err)
	}

	score, _ := s.UserScore(ctx, "games", "alice")
	if score != 0 {
		t.Errorf("score leaked across rooms: %g", score)
	}
}

func TestScore_UpdateScoreScript(t *testing.T) {
	s := newTestScore(t)
	ctx := context.Background()

	if err := s.UpdateScore(ctx, "alice", "5", "lobby"); err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if err := s.UpdateScore(ctx, "alice", "-2", "lobby"); err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}

	score, _ := s.UserScore(ctx, "lobby", "alice")
	if score != 3 {
		t.Errorf("score after script updates = %g, want 3", score)
	}
}

func TestFormatBoard(t *testing.T) {
	empty := FormatBoard("lobby", nil)
	if !strings.Contains(empty, "(empty)") {
		t.Errorf("empty board = %q", empty)
	}

	board := FormatBoard("lobby", []ScoreEntry{
		{Name: "dave", Score: 40},
		{Name: "alice", Score: 30},
	})
	lines := strings.Split(board, "\n")
	if len(lines) != 3 {
		t.Fatalf("board has %d lines, want 3: %q", len(lines), board)
	}
	if !strings.Contains(lines[1], "1.") || !strings.Contains(lines[1], "dave") {
		t.Errorf("first row = %q, want rank 1 dave", lines[1])
	}
}

func commandReply(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case line := <-c.send:
		return string(line)
	default:
		t.Fatal("no private reply queued")
		return ""
	}
}

func TestScore_HandleCommand(t *testing.T) {
	s := newTestScore(t)
	ctx := context.Background()
	c := &Client{username: "alice", send: make(chan []byte, 8)}

	if err := s.SetScore(ctx, "lobby", "bob", 9); err != nil {
		t.Fatal(err)
	}

	s.HandleCommand(ctx, c, "lobby", "@score")
	if board := commandReply(t, c); !strings.Contains(board, "bob") {
		t.Errorf("board reply = %q, want bob listed", board)
	}

	s.HandleCommand(ctx, c, "lobby", "@score me")
	if reply := commandReply(t, c); !strings.Contains(reply, "0 points") {
		t.Errorf("me reply = %q, want 0 points", reply)
	}

	s.HandleCommand(ctx, c, "lobby", "@score +3")
	if reply := commandReply(t, c); !strings.Contains(reply, "3 points") {
		t.Errorf("delta reply = %q, want 3 points", reply)
	}
	if score, _ := s.UserScore(ctx, "lobby", "alice"); score != 3 {
		t.Errorf("score after @score +3 = %g, want 3", score)
	}

	// Garbage after @score falls back to the board.
	s.HandleCommand(ctx, c, "lobby", "@score +abc")
	if board := commandReply(t, c); !strings.Contains(board, "Leaderboard") {
		t.Errorf("fallback reply = %q, want the board", board)
	}
}

func TestScore_IsCommand(t *testing.T) {
	s := newTestScore(t)

	for _, text := range []string{"@score", "  @score", "@SCORE me"} {
		if !s.IsCommand(text) {
			t.Errorf("IsCommand(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"score", "hello @score"} {
		if s.IsCommand(text) {
			t.Errorf("IsCommand(%q) = true, want false", text)
		}
	}
}

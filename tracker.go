package main

import (
	"sync"
	"time"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// historyCap bounds the per-room message history; oldest entries are
// evicted first.
const historyCap = 100

// rateWindow is the rolling window used for the per-room bot reply cap.
const rateWindow = 60 * time.Second

type trackedMessage struct {
	user string
	text string
	at   int64 // unix ms
}

type roomActivity struct {
	messages    []trackedMessage
	lastHumanAt int64 // unix ms, 0 = never
	lastBotAt   int64
	replyTimes  []int64 // bot reply timestamps inside the rate window
}

// Registry tracks recent conversation activity per room. It is the only
// holder of room state; components that need it get the registry by
// reference. Message arrival, bus delivery and the inactivity sweep all
// touch it concurrently, so every operation runs under one mutex.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*roomActivity
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*roomActivity)}
}

// state returns the room record, creating it lazily. Must be called with
// mu held.
func (r *Registry) state(room string) *roomActivity {
	st, ok := r.rooms[room]
	if !ok {
		st = &roomActivity{}
		r.rooms[room] = st
	}
	return st
}

// Record appends a message to the room history and updates the
// human/bot activity timestamp for the speaker's role. Empty text still
// counts as activity but is not kept in the history.
func (r *Registry) Record(room, user, text, role string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(room)
	at := now.UnixMilli()

	if text != "" {
		st.messages = append(st.messages, trackedMessage{user: user, text: text, at: at})
		if len(st.messages) > historyCap {
			st.messages = st.messages[len(st.messages)-historyCap:]
		}
	}

	if role == RoleBot {
		st.lastBotAt = at
	} else {
		st.lastHumanAt = at
	}
}

// RecentText returns the last n message texts in chronological order.
func (r *Registry) RecentText(room string, n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[room]
	if !ok || n <= 0 {
		return nil
	}
	msgs := st.messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.text
	}
	return out
}

// ActiveRooms lists rooms that have at least one message in history.
func (r *Registry) ActiveRooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.rooms))
	for room, st := range r.rooms {
		if len(st.messages) > 0 {
			out = append(out, room)
		}
	}
	return out
}

// LastActivity returns the most recent human or bot activity timestamp
// in unix ms (0 if the room has never seen a message).
func (r *Registry) LastActivity(room string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[room]
	if !ok {
		return 0
	}
	if st.lastHumanAt > st.lastBotAt {
		return st.lastHumanAt
	}
	return st.lastBotAt
}

// CanSpeak reports whether a bot reply in the room would respect both the
// cooldown and the rolling per-minute cap. It prunes the reply window as a
// side effect.
func (r *Registry) CanSpeak(room string, now time.Time, minGap time.Duration, maxPerMinute int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(room)
	ms := now.UnixMilli()

	if st.lastBotAt > 0 && ms-st.lastBotAt < minGap.Milliseconds() {
		return false
	}

	kept := st.replyTimes[:0]
	for _, ts := range st.replyTimes {
		if ms-ts < rateWindow.Milliseconds() {
			kept = append(kept, ts)
		}
	}
	st.replyTimes = kept

	return len(st.replyTimes) < maxPerMinute
}

// MarkSpoken records that the bot just replied in the room. Called whether
// or not the downstream AI request succeeds, so rate accounting stays
// correct on failure.
func (r *Registry) MarkSpoken(room string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(room)
	ms := now.UnixMilli()
	st.lastBotAt = ms
	st.replyTimes = append(st.replyTimes, ms)
}

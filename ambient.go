package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	lockKeyPrefix = "lock:ambient:"

	// maxChance caps the effective speak probability no matter how many
	// boosts apply.
	maxChance = 0.95
)

// Ambient decides whether and when the automated participant speaks in a
// room. Two triggers converge here: every delivered message, and a fixed
// inactivity sweep. Both go through one mutex so the gate check and the
// spoken bookkeeping cannot interleave; across instances the Locker keeps
// at most one reply in flight per room.
type Ambient struct {
	cfg  AmbientConfig
	reg  *Registry
	lock Locker
	ai   AITrigger
	log  zerolog.Logger

	mu sync.Mutex // serializes speak attempts

	// overridable in tests
	now       func() time.Time
	randFloat func() float64
}

func NewAmbient(cfg AmbientConfig, reg *Registry, lock Locker, ai AITrigger, log zerolog.Logger) *Ambient {
	return &Ambient{
		cfg:       cfg,
		reg:       reg,
		lock:      lock,
		ai:        ai,
		log:       log,
		now:       time.Now,
		randFloat: rand.Float64,
	}
}

// OnMessage records a delivered message and probabilistically considers an
// ambient reply. Called for every message, human or bot; the cooldown gate
// keeps the bot from chaining off its own replies.
func (a *Ambient) OnMessage(room, user, text, role string) {
	a.reg.Record(room, user, text, role, a.now())

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.reg.CanSpeak(room, a.now(), a.minGap(), a.cfg.MaxPerMinute) {
		return
	}

	// Additive probability: the base chance guarantees a floor of
	// engagement for mundane messages, and a single boolean boost caps how
	// much any one heuristic can sway the outcome.
	p := a.cfg.BaseChance
	if ReplyWorthy(text) {
		p += a.cfg.SalientBoost
	}
	if p > maxChance {
		p = maxChance
	}
	if p < 0 {
		p = 0
	}

	if a.randFloat() < p {
		a.speakLocked(room)
	}
}

// Run drives the inactivity sweep until the context is cancelled. The
// sweep guarantees a room with history does not go permanently silent.
func (a *Ambient) Run(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.SweepInterval)
	defer ticker.Stop()

	a.log.Info().Msg("ambient scheduler started")
	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("ambient scheduler stopped")
			return
		case <-ticker.C:
			a.ScanInactivity()
		}
	}
}

// ScanInactivity attempts one speak per room that has been silent for at
// least InactivitySec and still passes the cooldown/rate gate.
func (a *Ambient) ScanInactivity() {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	for _, room := range a.reg.ActiveRooms() {
		last := a.reg.LastActivity(room)
		if last == 0 {
			continue
		}
		since := now.UnixMilli() - last
		if since < int64(a.cfg.InactivitySec)*1000 {
			continue
		}
		if a.reg.CanSpeak(room, now, a.minGap(), a.cfg.MaxPerMinute) {
			a.speakLocked(room)
		}
	}
}

// speakLocked performs one speak attempt. Must be called with mu held.
// Losing the distributed lock means another instance is handling this
// room's turn; that is not an error and leaves no local trace.
func (a *Ambient) speakLocked(room string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if !a.lock.TryAcquire(ctx, lockKeyPrefix+room, a.cfg.LockTTL) {
		a.log.Debug().Str("room", room).Msg("ambient turn taken elsewhere")
		return
	}

	recent := a.reg.RecentText(room, a.cfg.ContextLines)
	if len(recent) == 0 {
		return
	}

	a.ai.TriggerResponse(room, recent, "system")

	// Mark spoken regardless of how the trigger fares so the cooldown and
	// rate window stay correct even when the AI backend is down.
	a.reg.MarkSpoken(room, a.now())
	a.log.Debug().Str("room", room).Int("context", len(recent)).Msg("ambient reply triggered")
}

func (a *Ambient) minGap() time.Duration {
	return time.Duration(a.cfg.MinGapSec) * time.Second
}

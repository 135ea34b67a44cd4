package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// dedupWindow is how long two deliveries of the same logical message
	// count as one.
	dedupWindow = time.Second

	// dedupRetention and dedupPruneSize bound the cache: once it grows past
	// the size threshold, entries older than the retention are discarded.
	dedupRetention = 5 * time.Second
	dedupPruneSize = 2000
)

// Dedup consumes inbound bus deliveries and guarantees each logical
// message (room|user|text) reaches local clients at most once per window.
// The cache is process-local: each instance deduplicates its own view of
// the bus independently.
type Dedup struct {
	hub         *Hub
	ambient     *Ambient
	defaultRoom string
	log         zerolog.Logger

	mu   sync.Mutex
	seen map[string]int64 // logical identity → last-seen unix ms

	now func() time.Time // overridable in tests
}

func NewDedup(hub *Hub, ambient *Ambient, defaultRoom string, log zerolog.Logger) *Dedup {
	return &Dedup{
		hub:         hub,
		ambient:     ambient,
		defaultRoom: defaultRoom,
		log:         log,
		seen:        make(map[string]int64),
		now:         time.Now,
	}
}

// OnBusMessage handles one raw bus delivery. Malformed payloads degrade to
// best-effort opaque delivery to the default room, keyed on the raw bytes;
// nothing that arrives here can panic past this boundary.
func (d *Dedup) OnBusMessage(payload []byte) {
	var msg BusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		if d.duplicate(string(payload)) {
			return
		}
		d.log.Debug().Msg("non-JSON bus payload, delivering as opaque text")
		d.hub.Deliver(d.defaultRoom, payload)
		return
	}

	// Dedupe on logical identity rather than the raw payload, which
	// carries a transient timestamp.
	if d.duplicate(msg.Room + "|" + msg.User + "|" + msg.Text) {
		return
	}

	role := msg.Role
	if role == "" {
		role = RoleUser
	}

	// Feed the ambient scheduler from the bus, not from local sends, so
	// every instance tracks the same room activity.
	d.ambient.OnMessage(msg.Room, msg.User, msg.Text, role)

	d.hub.Deliver(msg.Room, []byte("["+msg.User+"] "+msg.Text))
}

// duplicate records the key and reports whether it was already seen inside
// the dedup window. Pruning is opportunistic, triggered by cache size.
func (d *Dedup) duplicate(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().UnixMilli()
	if last, ok := d.seen[key]; ok && now-last < dedupWindow.Milliseconds() {
		return true
	}
	d.seen[key] = now

	if len(d.seen) > dedupPruneSize {
		for k, v := range d.seen {
			if now-v > dedupRetention.Milliseconds() {
				delete(d.seen, k)
			}
		}
	}
	return false
}

package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterJanitorPeriod = 5 * time.Minute
	limiterIdleCutoff    = 10 * time.Minute
)

// RateLimiter caps connection attempts per client IP with a token bucket
// each. Idle entries are reclaimed by a background janitor.
type RateLimiter struct {
	mu    sync.Mutex
	perIP map[string]*ipBucket
	rps   float64
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64) *RateLimiter {
	rl := &RateLimiter{
		perIP: make(map[string]*ipBucket),
		rps:   rps,
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	b, ok := rl.perIP[ip]
	if !ok {
		b = &ipBucket{
			limiter: rate.NewLimiter(rate.Limit(rl.rps), int(rl.rps)*2),
		}
		rl.perIP[ip] = b
	}
	b.lastSeen = time.Now()
	rl.mu.Unlock()

	return b.limiter.Allow()
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(limiterJanitorPeriod)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-limiterIdleCutoff)
		for ip, b := range rl.perIP {
			if b.lastSeen.Before(cutoff) {
				delete(rl.perIP, ip)
			}
		}
		rl.mu.Unlock()
	}
}

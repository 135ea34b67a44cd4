package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	TLSCert        string
	TLSKey         string
	MaxMessageSize int64
	RateLimitPerIP float64
	LogLevel       string

	RedisAddr   string
	ChatChannel string
	DefaultRoom string

	DatabaseURL string

	AIURL      string
	AITriggers []string

	Ambient AmbientConfig
}

// AmbientConfig tunes the automated participant. Every knob is
// overridable via AMBIENT_* env vars.
type AmbientConfig struct {
	InactivitySec int           // speak after this much room silence
	MinGapSec     int           // minimum spacing between bot replies
	MaxPerMinute  int           // per-room replies in a rolling minute
	BaseChance    float64       // baseline speak probability per message
	SalientBoost  float64       // added when the message looks reply-worthy
	ContextLines  int           // recent messages sent to the AI backend
	LockTTL       time.Duration // distributed lock lifetime
	UseLock       bool          // disable for single-instance deployments
	SweepInterval time.Duration // inactivity scan period
}

func LoadConfig() *Config {
	return &Config{
		Addr:           envStr("CHAT_ADDR", ":3001"),
		TLSCert:        envStr("CHAT_TLS_CERT", ""),
		TLSKey:         envStr("CHAT_TLS_KEY", ""),
		MaxMessageSize: int64(envInt("CHAT_MAX_MESSAGE_SIZE", 65536)),
		RateLimitPerIP: envFloat("CHAT_RATE_LIMIT_PER_IP", 100),
		LogLevel:       envStr("LOG_LEVEL", "info"),

		RedisAddr:   envStr("REDIS_ADDR", "redis:6379"),
		ChatChannel: envStr("REDIS_CHAT_CHANNEL", "chat"),
		DefaultRoom: envStr("CHAT_DEFAULT_ROOM", "lobby"),

		DatabaseURL: envStr("DATABASE_URL", ""),

		AIURL:      envStr("AI_URL", "http://mcp:8000/mcp/event"),
		AITriggers: envList("AI_TRIGGERS", []string{"imposter", "@bot"}),

		Ambient: AmbientConfig{
			InactivitySec: envInt("AMBIENT_INACTIVITY_SEC", 45),
			MinGapSec:     envInt("AMBIENT_MIN_GAP_SEC", 25),
			MaxPerMinute:  envInt("AMBIENT_MAX_PER_MINUTE", 3),
			BaseChance:    envFloat("AMBIENT_BASE_CHANCE", 0.15),
			SalientBoost:  envFloat("AMBIENT_SALIENT_BOOST", 0.35),
			ContextLines:  envInt("AMBIENT_CONTEXT_LINES", 15),
			LockTTL:       time.Duration(envInt("AMBIENT_LOCK_TTL_SEC", 5)) * time.Second,
			UseLock:       envBool("AMBIENT_USE_LOCK", true),
			SweepInterval: time.Duration(envInt("AMBIENT_SWEEP_SEC", 10)) * time.Second,
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg := LoadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Degraded but alive: the bus subscriber retries on its own and the
		// lock/ledger fail safe per call.
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup")
	}

	var store *Store
	if cfg.DatabaseURL != "" {
		store, err = NewStore(ctx, cfg.DatabaseURL, log.With().Str("component", "store").Logger())
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, persistence disabled")
			store = nil
		} else {
			defer store.Close()
		}
	}

	var locker Locker = noopLock{}
	if cfg.Ambient.UseLock {
		locker = NewRedisLock(rdb, log.With().Str("component", "lock").Logger())
	}

	hub := NewHub(cfg.DefaultRoom, log.With().Str("component", "hub").Logger())
	bus := NewBus(rdb, cfg.ChatChannel, log.With().Str("component", "bus").Logger())
	ai := NewAIService(cfg.AIURL, cfg.AITriggers, log.With().Str("component", "ai").Logger())
	score := NewScoreService(rdb, "leaderboard", log.With().Str("component", "score").Logger())
	registry := NewRegistry()
	ambient := NewAmbient(cfg.Ambient, registry, locker, ai, log.With().Str("component", "ambient").Logger())
	chat := NewChatService(hub, bus, store, score, ai, log.With().Str("component", "chat").Logger())
	dedup := NewDedup(hub, ambient, cfg.DefaultRoom, log.With().Str("component", "dedup").Logger())

	go hub.Run(ctx)
	go ambient.Run(ctx)

	if err := bus.Subscribe(ctx, dedup.OnBusMessage); err != nil {
		log.Error().Err(err).Msg("bus subscribe failed, running without broadcast delivery")
	}

	srv := NewServer(cfg, hub, chat, store, rdb, log.With().Str("component", "server").Logger())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info().Msg("shutting down...")
		cancel()
		srv.Shutdown()
	}()

	log.Info().Str("addr", cfg.Addr).Msg("imposter chat starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

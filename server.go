package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	cfg     *Config
	hub     *Hub
	chat    *ChatService
	store   *Store // nil when persistence is disabled
	rdb     *redis.Client
	limiter *RateLimiter
	log     zerolog.Logger
	srv     *http.Server
}

func NewServer(cfg *Config, hub *Hub, chat *ChatService, store *Store, rdb *redis.Client, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     hub,
		chat:    chat,
		store:   store,
		rdb:     rdb,
		limiter: NewRateLimiter(cfg.RateLimitPerIP),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) ListenAndServe() error {
	if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
		s.srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
		s.log.Info().Str("cert", s.cfg.TLSCert).Msg("TLS enabled")
		return s.srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
	}
	s.log.Info().Msg("TLS disabled (no cert/key configured)")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("shutdown error")
	}
}

// handleHealth reports liveness plus the state of the Redis and database
// collaborators; degraded is still 200, the process serves what it can.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	redisOK := s.rdb.Ping(ctx).Err() == nil
	dbOK := s.store != nil && s.store.Healthy(ctx)

	status := "healthy"
	if !redisOK || !dbOK {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"ts":     time.Now().UTC().Format(time.RFC3339),
		"services": map[string]bool{
			"redis":    redisOK,
			"database": dbOK,
		},
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if !s.limiter.Allow(ip) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade error")
		return
	}
	conn.SetReadLimit(s.cfg.MaxMessageSize)

	connID := uuid.NewString()
	username := randomUsername()

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := s.store.UpsertUser(ctx, connID, username); err != nil {
			s.log.Warn().Err(err).Msg("upsert user failed")
		}
		cancel()
	}

	client := NewClient(s.hub, s.chat, conn, connID, username, ip, s.log)
	s.hub.Register(client)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

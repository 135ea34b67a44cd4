package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store is a minimal Postgres wrapper for user/message persistence. SQL is
// kept small and explicit; queries are parameterized. Persistence is an
// audit trail, not a delivery path, so callers treat failures as advisory.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStore connects to Postgres. An unreachable database returns an error
// so the caller can choose to run without persistence.
func NewStore(ctx context.Context, url string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) UpsertUser(ctx context.Context, connID, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (socket_id, name) VALUES ($1, $2)
		 ON CONFLICT (socket_id) DO UPDATE SET name = COALESCE($2, users.name)`,
		connID, name)
	return err
}

func (s *Store) InsertMessage(ctx context.Context, connID, content, room string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (user_socket_id, content, room) VALUES ($1, $2, $3)`,
		connID, content, room)
	return err
}

// Healthy reports whether the database answers a trivial query.
func (s *Store) Healthy(ctx context.Context) bool {
	var one int
	return s.pool.QueryRow(ctx, "SELECT 1").Scan(&one) == nil
}

func (s *Store) Close() {
	s.pool.Close()
}

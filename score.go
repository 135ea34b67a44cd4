package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// scoreDeltaScript applies a score delta in a single atomic round trip.
// Inputs: KEYS[1] = leaderboard key, ARGV[1] = player, ARGV[2] = delta
// (string-encoded number). go-redis re-submits the script source on
// NOSCRIPT, so a restarted Redis never surfaces an error to callers.
var scoreDeltaScript = redis.NewScript(`
local score = redis.call('ZINCRBY', KEYS[1], ARGV[2], ARGV[1])
return tostring(score)
`)

var scoreCommandRe = regexp.MustCompile(`(?i)^\s*@score\b`)

type ScoreEntry struct {
	Name  string
	Score float64
}

// ScoreService manages per-room player rankings in Redis sorted sets,
// keyed `<prefix>:<room>`. Stateless and safe to share across rooms.
type ScoreService struct {
	rdb    *redis.Client
	prefix string
	log    zerolog.Logger
}

func NewScoreService(rdb *redis.Client, prefix string, log zerolog.Logger) *ScoreService {
	if prefix == "" {
		prefix = "leaderboard"
	}
	return &ScoreService{rdb: rdb, prefix: prefix, log: log}
}

func (s *ScoreService) key(room string) string {
	return s.prefix + ":" + room
}

// IncrementScore adds delta (which may be negative) to a player's score
// and returns the new value.
func (s *ScoreService) IncrementScore(ctx context.Context, room, player string, delta float64) (float64, error) {
	return s.rdb.ZIncrBy(ctx, s.key(room), delta, player).Result()
}

// SetScore sets a player's score to an absolute value.
func (s *ScoreService) SetScore(ctx context.Context, room, player string, score float64) error {
	return s.rdb.ZAdd(ctx, s.key(room), redis.Z{Score: score, Member: player}).Err()
}

// UserScore returns a player's current score, 0 if absent.
func (s *ScoreService) UserScore(ctx context.Context, room, player string) (float64, error) {
	score, err := s.rdb.ZScore(ctx, s.key(room), player).Result()
	if err == redis.Nil {
		return 0, nil
	}
	return score, err
}

// UpdateScore applies a delta through the server-side script: one round
// trip, race-free against concurrent callers.
func (s *ScoreService) UpdateScore(ctx context.Context, player, delta, room string) error {
	return scoreDeltaScript.Run(ctx, s.rdb, []string{s.key(room)}, player, delta).Err()
}

// Leaderboard returns up to limit entries starting at offset, highest
// score first.
func (s *ScoreService) Leaderboard(ctx context.Context, room string, limit, offset int64) ([]ScoreEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, s.key(room), offset, offset+limit-1).Result()
	if err != nil {
		return nil, err
	}
	rows := make([]ScoreEntry, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		rows = append(rows, ScoreEntry{Name: name, Score: z.Score})
	}
	return rows, nil
}

// FormatBoard renders a leaderboard as a multi-line chat string.
func FormatBoard(room string, rows []ScoreEntry) string {
	if len(rows) == 0 {
		return fmt.Sprintf("Leaderboard [%s] (empty)", room)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Leaderboard [%s]", room)
	for i, r := range rows {
		fmt.Fprintf(&b, "\n%2d. %s - %g", i+1, r.Name, r.Score)
	}
	return b.String()
}

// IsCommand reports whether the text is a @score chat command.
func (s *ScoreService) IsCommand(text string) bool {
	return scoreCommandRe.MatchString(text)
}

// HandleCommand answers a @score command privately to the requester.
// Supported: "@score" (top-10 board), "@score me" (own score),
// "@score +N" / "@score -N" (apply a delta through the atomic script).
// Ledger errors degrade to a short notice, never an error to the caller.
func (s *ScoreService) HandleCommand(ctx context.Context, c *Client, room, text string) {
	fields := strings.Fields(text)
	if len(fields) >= 2 {
		arg := fields[1]
		switch {
		case strings.EqualFold(arg, "me"):
			score, err := s.UserScore(ctx, room, c.username)
			if err != nil {
				s.log.Warn().Err(err).Str("room", room).Msg("score fetch failed")
				c.SendText("Scores unavailable right now.")
				return
			}
			c.SendText(fmt.Sprintf("%s has %g points in [%s]", c.username, score, room))
			return

		case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
			if _, err := strconv.ParseFloat(arg, 64); err != nil {
				break
			}
			if err := s.UpdateScore(ctx, c.username, arg, room); err != nil {
				s.log.Warn().Err(err).Str("room", room).Msg("score update failed")
				c.SendText("Scores unavailable right now.")
				return
			}
			score, _ := s.UserScore(ctx, room, c.username)
			c.SendText(fmt.Sprintf("%s now has %g points in [%s]", c.username, score, room))
			return
		}
	}

	rows, err := s.Leaderboard(ctx, room, 10, 0)
	if err != nil {
		s.log.Warn().Err(err).Str("room", room).Msg("leaderboard fetch failed")
		c.SendText("Leaderboard unavailable right now.")
		return
	}
	c.SendText(FormatBoard(room, rows))
}

// Package leaderboard keeps a cross-session top-score board in Redis.
// It is a best-effort mirror fed by the adapters after successful plays;
// game state never depends on it.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

const (
	keyBoard      = "zanjir:board"
	keyUserPrefix = "zanjir:user:"
)

type Board struct {
	rdb *redis.Client
}

// New connects to REDIS_URL-style addresses (redis://[:pass@]host:port/db).
func New(redisURL string) (*Board, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for leaderboard")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Board{rdb: rdb}, nil
}

// NewWithClient wraps an existing client; tests pair it with miniredis.
func NewWithClient(rdb *redis.Client) *Board { return &Board{rdb: rdb} }

func (b *Board) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// RecordScore upserts the user's record and board rank. Implements
// wordchain.ScoreRecorder.
func (b *Board) RecordScore(ctx context.Context, user *wordchain.User) error {
	if b == nil || b.rdb == nil || user == nil || strings.TrimSpace(user.ID) == "" {
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	pipe := b.rdb.TxPipeline()
	pipe.Set(ctx, keyUserPrefix+user.ID, raw, 0)
	pipe.ZAdd(ctx, keyBoard, redis.Z{Score: float64(user.Score), Member: user.ID})
	_, err = pipe.Exec(ctx)
	return err
}

// Top returns up to n users ordered by score, highest first.
func (b *Board) Top(ctx context.Context, n int) ([]*wordchain.User, error) {
	if b == nil || b.rdb == nil {
		return nil, nil
	}
	if n <= 0 {
		n = 10
	}
	zs, err := b.rdb.ZRevRangeWithScores(ctx, keyBoard, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*wordchain.User, 0, len(zs))
	for _, z := range zs {
		id, _ := z.Member.(string)
		u := &wordchain.User{ID: id, Score: int(z.Score)}
		if raw, err := b.rdb.Get(ctx, keyUserPrefix+id).Bytes(); err == nil {
			var full wordchain.User
			if jerr := json.Unmarshal(raw, &full); jerr == nil {
				u = &full
				u.Score = int(z.Score)
			}
		}
		out = append(out, u)
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

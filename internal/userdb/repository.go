// Package userdb mirrors user records into Postgres so scores survive
// restarts for reporting. Writes are best-effort; the in-memory registry
// stays authoritative for game state.
package userdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/Mohampouraz/Zanjirvajeh/internal/wordchain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// RecordScore upserts the user row. Implements wordchain.ScoreRecorder.
func (r *Repository) RecordScore(ctx context.Context, u *wordchain.User) error {
	if r == nil || r.db == nil || u == nil || strings.TrimSpace(u.ID) == "" {
		return nil
	}
	q := `INSERT INTO users (user_id, display_name, score, updated_at)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (user_id) DO UPDATE SET
        display_name=EXCLUDED.display_name,
        score=EXCLUDED.score,
        updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.DisplayName, u.Score, u.UpdatedAt)
	return err
}

// TopUsers returns up to limit users by mirrored score, highest first.
func (r *Repository) TopUsers(ctx context.Context, limit int) ([]*wordchain.User, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, display_name, score, updated_at FROM users ORDER BY score DESC, updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*wordchain.User
	for rows.Next() {
		u := &wordchain.User{}
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Score, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

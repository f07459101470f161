package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/shotlens/shotlens/internal/dribbble"
	"github.com/shotlens/shotlens/internal/metrics"
)

// Archive kinds, also used as metric labels.
const (
	KindShot    = "shot"
	KindPlayer  = "player"
	KindComment = "comment"
)

// Counts reports how many records of each kind are archived.
type Counts struct {
	Shots    int `json:"shots" yaml:"shots"`
	Players  int `json:"players" yaml:"players"`
	Comments int `json:"comments" yaml:"comments"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveShots upserts shots and their embedded players in one transaction.
func (s *Store) SaveShots(ctx context.Context, shots ...dribbble.Shot) error {
	return s.inTx(ctx, KindShot, func(tx *sql.Tx, now int64) error {
		for i := range shots {
			if err := upsertShot(ctx, tx, &shots[i], now); err != nil {
				return err
			}
		}
		return nil
	})
}

// SavePlayers upserts player profiles.
func (s *Store) SavePlayers(ctx context.Context, players ...dribbble.Player) error {
	return s.inTx(ctx, KindPlayer, func(tx *sql.Tx, now int64) error {
		for i := range players {
			if err := upsertPlayer(ctx, tx, &players[i], now); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveComments upserts the comments of one shot along with their authors.
func (s *Store) SaveComments(ctx context.Context, shotID int64, comments ...dribbble.Comment) error {
	return s.inTx(ctx, KindComment, func(tx *sql.Tx, now int64) error {
		for i := range comments {
			comment := &comments[i]
			payload, err := json.Marshal(comment)
			if err != nil {
				return fmt.Errorf("encode comment %d: %w", comment.ID, err)
			}

			var playerID sql.NullInt64
			if comment.Player != nil && comment.Player.ID > 0 {
				playerID = sql.NullInt64{Int64: comment.Player.ID, Valid: true}
				if err := upsertPlayer(ctx, tx, comment.Player, now); err != nil {
					return err
				}
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO comments (id, shot_id, player_id, body, payload, archived_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					shot_id = excluded.shot_id,
					player_id = excluded.player_id,
					body = excluded.body,
					payload = excluded.payload,
					archived_at = excluded.archived_at
			`, comment.ID, shotID, playerID, comment.Body, string(payload), now); err != nil {
				return fmt.Errorf("archive comment %d: %w", comment.ID, err)
			}
		}
		return nil
	})
}

// ListShots returns archived shots, most recently archived first. A
// non-positive limit returns everything.
func (s *Store) ListShots(ctx context.Context, limit int) ([]dribbble.Shot, error) {
	return listPayloads[dribbble.Shot](ctx, s, `SELECT payload FROM shots ORDER BY archived_at DESC, id DESC`, limit)
}

// ListPlayers returns archived players, most recently archived first.
func (s *Store) ListPlayers(ctx context.Context, limit int) ([]dribbble.Player, error) {
	return listPayloads[dribbble.Player](ctx, s, `SELECT payload FROM players ORDER BY archived_at DESC, id DESC`, limit)
}

// ShotComments returns the archived comments for a shot in id order.
func (s *Store) ShotComments(ctx context.Context, shotID int64) ([]dribbble.Comment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT payload FROM comments WHERE shot_id = ? ORDER BY id`, shotID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return scanPayloads[dribbble.Comment](rows)
}

// Counts returns the number of archived records per kind.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	if err := s.ready(); err != nil {
		return counts, err
	}

	targets := []struct {
		table string
		dest  *int
	}{
		{"shots", &counts.Shots},
		{"players", &counts.Players},
		{"comments", &counts.Comments},
	}
	for _, target := range targets {
		row := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+target.table)
		if err := row.Scan(target.dest); err != nil {
			return counts, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return counts, nil
}

func (s *Store) ready() error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, kind string, fn func(tx *sql.Tx, now int64) error) (err error) {
	if err := s.ready(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() { metrics.RecordArchiveWrite(kind, err == nil) }()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	if err = fn(tx, time.Now().UTC().UnixNano()); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}
	return nil
}

func upsertShot(ctx context.Context, db execer, shot *dribbble.Shot, now int64) error {
	if shot == nil || shot.ID < 1 {
		return errors.New("shot id is required")
	}

	var playerID sql.NullInt64
	if shot.Player != nil && shot.Player.ID > 0 {
		playerID = sql.NullInt64{Int64: shot.Player.ID, Valid: true}
		if err := upsertPlayer(ctx, db, shot.Player, now); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(shot)
	if err != nil {
		return fmt.Errorf("encode shot %d: %w", shot.ID, err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO shots (id, title, player_id, image_url, payload, archived_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			player_id = excluded.player_id,
			image_url = excluded.image_url,
			payload = excluded.payload,
			archived_at = excluded.archived_at
	`, shot.ID, shot.Title, playerID, shot.ImageURL, string(payload), now); err != nil {
		return fmt.Errorf("archive shot %d: %w", shot.ID, err)
	}
	return nil
}

func upsertPlayer(ctx context.Context, db execer, player *dribbble.Player, now int64) error {
	if player == nil || player.ID < 1 {
		return errors.New("player id is required")
	}

	payload, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("encode player %d: %w", player.ID, err)
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO players (id, username, name, payload, archived_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			name = excluded.name,
			payload = excluded.payload,
			archived_at = excluded.archived_at
	`, player.ID, player.Username, player.Name, string(payload), now); err != nil {
		return fmt.Errorf("archive player %d: %w", player.ID, err)
	}
	return nil
}

func listPayloads[T any](ctx context.Context, s *Store, query string, limit int) ([]T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	return scanPayloads[T](rows)
}

func scanPayloads[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		var item T
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("decode archive row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read archive rows: %w", err)
	}
	return out, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		name TEXT,
		payload TEXT NOT NULL,
		archived_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);`,
	`CREATE TABLE IF NOT EXISTS shots (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		player_id INTEGER,
		image_url TEXT,
		payload TEXT NOT NULL,
		archived_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_shots_player ON shots(player_id);`,
	`CREATE INDEX IF NOT EXISTS idx_shots_archived ON shots(archived_at);`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY,
		shot_id INTEGER NOT NULL,
		player_id INTEGER,
		body TEXT,
		payload TEXT NOT NULL,
		archived_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_shot ON comments(shot_id);`,
}

// Migrate ensures the archive tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}
	return nil
}

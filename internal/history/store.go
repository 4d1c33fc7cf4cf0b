// Package history records what beetle has played in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a play id does not exist.
var ErrNotFound = errors.New("history: play not found")

// Store is a persistent play history backed by SQLite
type Store struct {
	db *sql.DB
}

// Play is one started track
type Play struct {
	ID        int64
	ItemID    string
	Title     string
	Artist    string
	Album     string
	Duration  time.Duration
	StartedAt time.Time
	Played    time.Duration
	Completed bool
	Error     string
}

// Open opens (creating if needed) the history database at path.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps in-memory databases consistent across calls
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			album TEXT,
			duration INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			played INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN DEFAULT 0,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_plays_started ON plays(started_at);
		CREATE INDEX IF NOT EXISTS idx_plays_item ON plays(item_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts a started play and returns its id
func (s *Store) Record(ctx context.Context, p Play) (int64, error) {
	if p.ItemID == "" {
		return 0, errors.New("history: item id is required")
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now()
	}

	query := `
		INSERT INTO plays (item_id, title, artist, album, duration, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		p.ItemID,
		p.Title,
		p.Artist,
		p.Album,
		int64(p.Duration.Seconds()),
		p.StartedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// UpdatePlayed stores how much of a play has been heard so far
func (s *Store) UpdatePlayed(ctx context.Context, id int64, played time.Duration) error {
	return s.update(ctx, id, "UPDATE plays SET played = ? WHERE id = ?", int64(played.Seconds()), id)
}

// MarkCompleted marks a play as listened to
func (s *Store) MarkCompleted(ctx context.Context, id int64, played time.Duration) error {
	return s.update(ctx, id,
		"UPDATE plays SET completed = 1, played = ?, error = NULL WHERE id = ?",
		int64(played.Seconds()), id)
}

// MarkError records a playback failure for a play
func (s *Store) MarkError(ctx context.Context, id int64, errMsg string) error {
	return s.update(ctx, id, "UPDATE plays SET error = ? WHERE id = ?", errMsg, id)
}

func (s *Store) update(ctx context.Context, id int64, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update play %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return nil
}

// Recent returns the most recent plays, newest first.
// A limit of zero or less returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Play, error) {
	query := `
		SELECT id, item_id, COALESCE(title, ''), COALESCE(artist, ''), COALESCE(album, ''),
			duration, started_at, played, completed, COALESCE(error, '')
		FROM plays
		ORDER BY started_at DESC, id DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var durationSecs, startedUnix, playedSecs int64

		err := rows.Scan(
			&p.ID,
			&p.ItemID,
			&p.Title,
			&p.Artist,
			&p.Album,
			&durationSecs,
			&startedUnix,
			&playedSecs,
			&p.Completed,
			&p.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		p.Duration = time.Duration(durationSecs) * time.Second
		p.StartedAt = time.Unix(startedUnix, 0)
		p.Played = time.Duration(playedSecs) * time.Second

		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return plays, nil
}

// Count returns the number of plays.
// If completedOnly is true, only listened plays are counted.
func (s *Store) Count(ctx context.Context, completedOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM plays"
	if completedOnly {
		query += " WHERE completed = 1"
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}

	return count, nil
}

// Cleanup removes plays started before maxAge ago
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM plays WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old plays: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

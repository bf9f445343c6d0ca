// Package cache persists synthesized narration audio and run history in
// SQLite. Re-narrating the same commit costs one TTS call per changed
// chunk instead of per chunk.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrMiss is returned when a key has no cached audio.
var ErrMiss = errors.New("cache miss")

// Cache manages narration audio and run history persistence in SQLite.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS narration_cache (
			key           TEXT PRIMARY KEY,
			provider      TEXT NOT NULL,
			voice_id      TEXT NOT NULL DEFAULT '',
			model_id      TEXT NOT NULL DEFAULT '',
			text_words    INTEGER NOT NULL DEFAULT 0,
			audio         BLOB NOT NULL,
			duration_secs REAL NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			repo        TEXT NOT NULL,
			commit_hash TEXT NOT NULL DEFAULT '',
			message     TEXT NOT NULL DEFAULT '',
			chunk_count INTEGER NOT NULL DEFAULT 0,
			audio_secs  REAL NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created_at
			ON runs(created_at);
	`)
	return err
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for one synthesis request. Any change to the
// provider, voice, model, or narration text yields a different key.
func Key(provider, voiceID, modelID, text string) string {
	sum := sha256.Sum256([]byte(provider + "|" + voiceID + "|" + modelID + "|" + text))
	return hex.EncodeToString(sum[:])
}

// Entry is one synthesized narration stored for reuse.
type Entry struct {
	Key          string
	Provider     string
	VoiceID      string
	ModelID      string
	TextWords    int
	Audio        []byte
	DurationSecs float64
	CreatedAt    time.Time
}

// PutAudio stores or replaces a cache entry.
func (c *Cache) PutAudio(e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO narration_cache
			(key, provider, voice_id, model_id, text_words, audio, duration_secs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Key, e.Provider, e.VoiceID, e.ModelID, e.TextWords, e.Audio, e.DurationSecs, e.CreatedAt,
	)
	return err
}

// GetAudio retrieves a cache entry, returning ErrMiss when absent.
func (c *Cache) GetAudio(key string) (*Entry, error) {
	e := &Entry{}
	err := c.db.QueryRow(
		`SELECT key, provider, voice_id, model_id, text_words, audio, duration_secs, created_at
		 FROM narration_cache WHERE key = ?`, key,
	).Scan(&e.Key, &e.Provider, &e.VoiceID, &e.ModelID, &e.TextWords, &e.Audio, &e.DurationSecs, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Purge deletes all cached audio. Run history is kept.
func (c *Cache) Purge() error {
	_, err := c.db.Exec(`DELETE FROM narration_cache`)
	return err
}

// Stats reports the number of cached narrations and their total audio
// size in bytes.
func (c *Cache) Stats() (count int, size int64, err error) {
	err = c.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(audio)), 0) FROM narration_cache`,
	).Scan(&count, &size)
	return count, size, err
}

// Run records one completed generation for the history listing.
type Run struct {
	ID         string
	Repo       string
	CommitHash string
	Message    string
	ChunkCount int
	AudioSecs  float64
	CreatedAt  time.Time
}

// AddRun inserts a run record.
func (c *Cache) AddRun(r *Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := c.db.Exec(
		`INSERT INTO runs (id, repo, commit_hash, message, chunk_count, audio_secs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Repo, r.CommitHash, r.Message, r.ChunkCount, r.AudioSecs, r.CreatedAt,
	)
	return err
}

// ListRuns returns run records newest first, up to limit (0 means all).
func (c *Cache) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT id, repo, commit_hash, message, chunk_count, audio_secs, created_at
		 FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Repo, &r.CommitHash, &r.Message, &r.ChunkCount, &r.AudioSecs, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

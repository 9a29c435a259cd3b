// Package history persists successfully completed downloads in a small
// SQLite archive. When enabled, a URL already present in the archive is
// treated as downloaded and skipped, like yt-dlp's --download-archive.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    title TEXT NOT NULL,
    artist TEXT NOT NULL,
    output_path TEXT NOT NULL,
    completed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_downloads_url ON downloads(url);
`

// Entry is one archived download.
type Entry struct {
	ID          int64
	URL         string
	Title       string
	Artist      string
	OutputPath  string
	CompletedAt time.Time
}

// Store manages archive persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the archive database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk database location.
func (s *Store) Path() string {
	return s.path
}

// Record archives a completed download.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	when := entry.CompletedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	return s.execWithRetry(ctx,
		`INSERT INTO downloads (url, title, artist, output_path, completed_at)
         VALUES (?, ?, ?, ?, ?)`,
		entry.URL, entry.Title, entry.Artist, entry.OutputPath,
		when.UTC().Format(time.RFC3339),
	)
}

// Seen reports whether the URL has a recorded successful download.
func (s *Store) Seen(ctx context.Context, url string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM downloads WHERE url = ? LIMIT 1`, url)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query archive: %w", err)
	}
	return true, nil
}

// Recent returns the most recently completed downloads, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, artist, output_path, completed_at
         FROM downloads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var completed string
		if err := rows.Scan(&entry.ID, &entry.URL, &entry.Title, &entry.Artist, &entry.OutputPath, &completed); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, completed); parseErr == nil {
			entry.CompletedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

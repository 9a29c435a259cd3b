// Package faillog persists failed downloads as a plain-text, human-readable
// log. Records are append-only during normal runs; retries only replay the
// URLs parsed back out of the log.
package faillog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const divider = "--------------------------------------------------"

// Record captures a single failed download.
type Record struct {
	URL    string
	Title  string
	Artist string
	Error  string
	Time   time.Time
}

// Log is an append-only failure log at a fixed path.
type Log struct {
	path string
}

// New returns a Log backed by the given path. The file is created lazily on
// first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the on-disk location of the log.
func (l *Log) Path() string {
	return l.path
}

// Append writes one labelled record block followed by a divider.
func (l *Log) Append(rec Record) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open failure log: %w", err)
	}

	when := rec.Time
	if when.IsZero() {
		when = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Time: %s\n", when.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Title: %s\n", rec.Title)
	fmt.Fprintf(&b, "Artist: %s\n", rec.Artist)
	fmt.Fprintf(&b, "URL: %s\n", rec.URL)
	fmt.Fprintf(&b, "Error: %s\n", rec.Error)
	b.WriteString(divider + "\n\n")

	if _, err := file.WriteString(b.String()); err != nil {
		file.Close()
		return fmt.Errorf("append failure log: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close failure log: %w", err)
	}
	return nil
}

// URLs re-derives the unique failed URLs from the log, preserving first-seen
// order. A missing log yields an empty slice.
func (l *Log) URLs() ([]string, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open failure log: %w", err)
	}
	defer file.Close()

	seen := make(map[string]struct{})
	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "URL: ") {
			continue
		}
		url := strings.TrimSpace(strings.TrimPrefix(line, "URL: "))
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan failure log: %w", err)
	}
	return urls, nil
}

// Empty reports whether the log is missing or contains no content.
func (l *Log) Empty() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		return true
	}
	return info.Size() == 0
}

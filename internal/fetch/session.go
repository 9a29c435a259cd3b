package fetch

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"opuskit/internal/faillog"
)

// ErrSessionActive is returned when another fetch run holds the session lock.
var ErrSessionActive = errors.New("another fetch session is already running")

// Session owns the per-run state shared across downloads: the failure log
// and the inter-process lock that keeps concurrent runs from interleaving
// writes to it.
type Session struct {
	failLog *faillog.Log
	lock    *flock.Flock
	records []faillog.Record
}

// NewSession builds a session around the failure log and lock file paths.
func NewSession(failLogPath, lockPath string) *Session {
	return &Session{
		failLog: faillog.New(failLogPath),
		lock:    flock.New(lockPath),
	}
}

// Acquire takes the session lock without blocking. A held lock means another
// run is active.
func (s *Session) Acquire() error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return ErrSessionActive
	}
	return nil
}

// Release drops the session lock.
func (s *Session) Release() error {
	return s.lock.Unlock()
}

// RecordFailure appends a failure to both the in-memory list and the
// on-disk log.
func (s *Session) RecordFailure(rec faillog.Record) error {
	s.records = append(s.records, rec)
	return s.failLog.Append(rec)
}

// Failures returns the failures recorded during this run.
func (s *Session) Failures() []faillog.Record {
	return s.records
}

// FailedURLs reads back the URLs of all failures persisted in the log,
// including ones from previous runs.
func (s *Session) FailedURLs() ([]string, error) {
	return s.failLog.URLs()
}

// FailLogPath returns the on-disk location of the failure log.
func (s *Session) FailLogPath() string {
	return s.failLog.Path()
}

// Reset clears the in-memory failures so a retry run only tracks what fails
// again. The on-disk log is append-only and is left untouched; URLs() already
// deduplicates re-appended blocks.
func (s *Session) Reset() {
	s.records = nil
}

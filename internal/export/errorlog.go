package export

import (
	"sync"

	"tapeshelf/internal/failures"
)

// ErrorEntry is one failed session.
type ErrorEntry struct {
	RecordingKey string
	Session      string
	Kind         string
	Err          error
}

// ErrorLog collects per-session failures from concurrent workers. Entries
// keep the order in which they were added.
type ErrorLog struct {
	mu      sync.Mutex
	entries []ErrorEntry
}

// Add appends a failure.
func (l *ErrorLog) Add(recordingKey, session string, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, ErrorEntry{
		RecordingKey: recordingKey,
		Session:      session,
		Kind:         failures.Kind(err),
		Err:          err,
	})
}

// Entries returns a copy of the collected failures.
func (l *ErrorLog) Entries() []ErrorEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ErrorEntry(nil), l.entries...)
}

// Len returns the number of failures collected.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

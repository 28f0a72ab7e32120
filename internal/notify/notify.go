package notify

import (
	"sync"
	"time"
)

// Feed is the per-session transient notification feed. Failed mutations,
// checkout outcomes and similar one-shot messages land here and are drained
// by the surface layer; nothing is persisted. Oldest entries are dropped once
// the feed is full.
const maxEntries = 50

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one transient, human-readable message.
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Feed struct {
	mu      sync.Mutex
	entries []Notification
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) push(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, Notification{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if len(f.entries) > maxEntries {
		f.entries = f.entries[len(f.entries)-maxEntries:]
	}
}

// Info posts an informational message.
func (f *Feed) Info(message string) { f.push(LevelInfo, message) }

// Success posts a success message.
func (f *Feed) Success(message string) { f.push(LevelSuccess, message) }

// Error posts a failure message. Satisfies optimistic.Notifier.
func (f *Feed) Error(message string) { f.push(LevelError, message) }

// Drain returns all queued notifications and empties the feed; these are
// transient toasts, shown once.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.entries
	f.entries = nil
	return out
}

// Len returns the number of queued notifications.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

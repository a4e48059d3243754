package tui

import (
	"sync"
	"time"

	"github.com/cctakt/cctakt/internal/core"
)

const (
	maxVisibleNotifications = 3
	notificationRetention   = 5 * time.Second
)

// Notification is one toast in the header's short-lived notification stack.
type Notification struct {
	Message   string
	Level     core.NotifyLevel
	CreatedAt time.Time
}

// TUIOutput is the sink every log handler and background subsystem pushes
// user-facing text into while the TUI owns the terminal. It is safe for
// concurrent use: the supervisor's own goroutine reads Visible() once per
// frame while reader threads and slog handlers write concurrently.
type TUIOutput struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewTUIOutput returns an empty output sink.
func NewTUIOutput() *TUIOutput {
	return &TUIOutput{}
}

// Log records a log line as a notification, mapping slog-style level
// strings onto NotifyLevel.
func (o *TUIOutput) Log(level, message string) {
	if message == "" {
		return
	}
	var nl core.NotifyLevel
	switch level {
	case "error":
		nl = core.NotifyError
	case "warn", "warning":
		nl = core.NotifyWarning
	default:
		nl = core.NotifyInfo
	}
	o.Push(message, nl)
}

// Push appends a notification with the current timestamp.
func (o *TUIOutput) Push(message string, level core.NotifyLevel) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notifications = append(o.notifications, Notification{
		Message: message, Level: level, CreatedAt: time.Now(),
	})
}

// Expire drops notifications older than the retention window. Called once
// per supervisor tick.
func (o *TUIOutput) Expire(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.notifications[:0]
	for _, n := range o.notifications {
		if now.Sub(n.CreatedAt) < notificationRetention {
			kept = append(kept, n)
		}
	}
	o.notifications = kept
}

// Visible returns up to the 3 most recent live notifications, newest
// last.
func (o *TUIOutput) Visible() []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.notifications) <= maxVisibleNotifications {
		out := make([]Notification, len(o.notifications))
		copy(out, o.notifications)
		return out
	}
	start := len(o.notifications) - maxVisibleNotifications
	out := make([]Notification, maxVisibleNotifications)
	copy(out, o.notifications[start:])
	return out
}

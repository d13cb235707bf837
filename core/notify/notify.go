package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level classifies a notification for the UI.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a brief, non-blocking message for the current visitor.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier delivers notifications. Notify must never block on a slow consumer.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// Send builds a notification stamped with the current time. A nil notifier is a no-op.
func Send(ctx context.Context, n Notifier, level Level, msg string) {
	if n == nil {
		return
	}
	n.Notify(ctx, Notification{Level: level, Message: msg, At: time.Now()})
}

// Error reports a failed operation.
func Error(ctx context.Context, n Notifier, msg string) { Send(ctx, n, LevelError, msg) }

// Warning reports a degraded but non-fatal condition.
func Warning(ctx context.Context, n Notifier, msg string) { Send(ctx, n, LevelWarning, msg) }

// Success reports a completed user action.
func Success(ctx context.Context, n Notifier, msg string) { Send(ctx, n, LevelSuccess, msg) }

// Buffer keeps the most recent notifications until they are drained.
// When full, the oldest entry is dropped so Notify never blocks.
type Buffer struct {
	mu    sync.Mutex
	items []Notification
	size  int
}

// NewBuffer creates a buffer holding up to size notifications (minimum 1).
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{size: size, items: make([]Notification, 0, size)}
}

func (b *Buffer) Notify(_ context.Context, n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == b.size {
		copy(b.items, b.items[1:])
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, n)
}

// Drain returns and removes all pending notifications, oldest first.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	b.items = b.items[:0]
	return out
}

// Len returns the number of pending notifications.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Log writes notifications to a structured logger.
func Log(log *slog.Logger) Notifier {
	return Func(func(ctx context.Context, n Notification) {
		level := slog.LevelInfo
		switch n.Level {
		case LevelWarning:
			level = slog.LevelWarn
		case LevelError:
			level = slog.LevelError
		}
		log.Log(ctx, level, n.Message, slog.String("notification_level", string(n.Level)))
	})
}

// Multi fans a notification out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(ctx context.Context, n Notification) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(ctx, n)
			}
		}
	})
}

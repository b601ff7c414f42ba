package notify

import (
	"context"
	"strings"
)

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return true
	}
	return false
}

// ParseLevel maps a case-insensitive name onto a Level, defaulting to info.
func ParseLevel(name string) Level {
	level := Level(strings.ToLower(strings.TrimSpace(name)))
	if level.Valid() {
		return level
	}
	return LevelInfo
}

// Notifier delivers a user-visible message. Implementations must not block
// for long and must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, message string, level Level)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, message string, level Level)

// Notify calls fn.
func (fn NotifierFunc) Notify(ctx context.Context, message string, level Level) {
	fn(ctx, message, level)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, string, Level) {})

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	targets := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			targets = append(targets, n)
		}
	}
	return NotifierFunc(func(ctx context.Context, message string, level Level) {
		for _, n := range targets {
			n.Notify(ctx, message, level)
		}
	})
}

package notify

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Alert is a stored notification.
type Alert struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Level   Level     `json:"level"`
	At      time.Time `json:"at"`
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used to stamp alerts.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimit caps the number of retained alerts; the oldest are dropped first.
func WithLimit(limit int) StoreOption {
	return func(s *Store) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// Store is an in-memory alert queue implementing Notifier.
type Store struct {
	mu     sync.Mutex
	alerts []Alert
	seq    uint64
	limit  int
	now    func() time.Time
}

var _ Notifier = (*Store)(nil)

// NewStore constructs an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Notify appends an alert. Blank messages are ignored.
func (s *Store) Notify(_ context.Context, message string, level Level) {
	if message == "" {
		return
	}
	if !level.Valid() {
		level = LevelInfo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.alerts = append(s.alerts, Alert{
		ID:      strconv.FormatUint(s.seq, 10),
		Message: message,
		Level:   level,
		At:      s.now(),
	})
	if s.limit > 0 && len(s.alerts) > s.limit {
		s.alerts = append([]Alert(nil), s.alerts[len(s.alerts)-s.limit:]...)
	}
}

// Alerts returns a copy of the pending alerts, oldest first.
func (s *Store) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

// Dismiss removes the alert with id and reports whether it existed.
func (s *Store) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, alert := range s.alerts {
		if alert.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Drain returns the pending alerts and empties the store.
func (s *Store) Drain() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.alerts
	s.alerts = nil
	return out
}

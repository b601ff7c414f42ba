// Package mutation wraps an asynchronous call with lifecycle callbacks and an
// observable state. A Mutation is re-invocable; its State always reflects the
// most recently started call.
package mutation

import (
	"context"
	"errors"
	"sync"
)

// ErrNilFunc is returned by Mutate when the mutation has no function.
var ErrNilFunc = errors.New("mutation: function is nil")

// Status is the lifecycle phase of a mutation.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of a mutation. Data is set on success, Err on error.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

// IsPending reports whether a call is in flight.
func (s State[T]) IsPending() bool { return s.Status == StatusPending }

// Func performs the side effect.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

type config[In, Out any] struct {
	onMutate  []func(context.Context, In)
	onSuccess []func(context.Context, Out, In)
	onError   []func(context.Context, error, In)
	onSettled []func(context.Context, Out, error, In)
}

// Option registers lifecycle callbacks.
type Option[In, Out any] func(*config[In, Out])

// OnMutate runs before the function is called.
func OnMutate[In, Out any](fn func(ctx context.Context, in In)) Option[In, Out] {
	return func(cfg *config[In, Out]) {
		if fn != nil {
			cfg.onMutate = append(cfg.onMutate, fn)
		}
	}
}

// OnSuccess runs after the function returns without error.
func OnSuccess[In, Out any](fn func(ctx context.Context, out Out, in In)) Option[In, Out] {
	return func(cfg *config[In, Out]) {
		if fn != nil {
			cfg.onSuccess = append(cfg.onSuccess, fn)
		}
	}
}

// OnError runs after the function returns an error.
func OnError[In, Out any](fn func(ctx context.Context, err error, in In)) Option[In, Out] {
	return func(cfg *config[In, Out]) {
		if fn != nil {
			cfg.onError = append(cfg.onError, fn)
		}
	}
}

// OnSettled runs after OnSuccess or OnError.
func OnSettled[In, Out any](fn func(ctx context.Context, out Out, err error, in In)) Option[In, Out] {
	return func(cfg *config[In, Out]) {
		if fn != nil {
			cfg.onSettled = append(cfg.onSettled, fn)
		}
	}
}

// Mutation is safe for concurrent use. Callbacks run on the calling goroutine
// without holding the mutation's lock.
type Mutation[In, Out any] struct {
	fn  Func[In, Out]
	cfg config[In, Out]

	mu    sync.RWMutex
	state State[Out]
	seq   uint64
}

// New constructs a Mutation around fn.
func New[In, Out any](fn Func[In, Out], opts ...Option[In, Out]) *Mutation[In, Out] {
	m := &Mutation[In, Out]{fn: fn, state: State[Out]{Status: StatusIdle}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&m.cfg)
	}
	return m
}

// Mutate calls the function and returns its result. The error is returned to
// the caller after the callbacks have run.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	var zero Out
	if m == nil || m.fn == nil {
		return zero, ErrNilFunc
	}

	m.mu.Lock()
	m.seq++
	call := m.seq
	m.state = State[Out]{Status: StatusPending}
	m.mu.Unlock()

	for _, fn := range m.cfg.onMutate {
		fn(ctx, in)
	}

	out, err := m.fn(ctx, in)

	m.mu.Lock()
	if call == m.seq {
		if err != nil {
			m.state = State[Out]{Status: StatusError, Err: err}
		} else {
			m.state = State[Out]{Status: StatusSuccess, Data: out}
		}
	}
	m.mu.Unlock()

	if err != nil {
		for _, fn := range m.cfg.onError {
			fn(ctx, err, in)
		}
	} else {
		for _, fn := range m.cfg.onSuccess {
			fn(ctx, out, in)
		}
	}
	for _, fn := range m.cfg.onSettled {
		fn(ctx, out, err, in)
	}
	return out, err
}

// State returns the current snapshot.
func (m *Mutation[In, Out]) State() State[Out] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Reset returns the mutation to idle. A call still in flight no longer
// updates the state when it completes.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.state = State[Out]{Status: StatusIdle}
}

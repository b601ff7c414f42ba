package mutation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-donorform/pkg/mutation"
)

func TestMutation_SuccessLifecycle(t *testing.T) {
	var events []string
	m := mutation.New(
		func(_ context.Context, in string) (int, error) {
			events = append(events, "fn:"+in)
			return len(in), nil
		},
		mutation.OnMutate[string, int](func(_ context.Context, in string) { events = append(events, "mutate") }),
		mutation.OnSuccess[string, int](func(_ context.Context, out int, _ string) { events = append(events, "success") }),
		mutation.OnError[string, int](func(context.Context, error, string) { events = append(events, "error") }),
		mutation.OnSettled[string, int](func(context.Context, int, error, string) { events = append(events, "settled") }),
	)

	if got := m.State().Status; got != mutation.StatusIdle {
		t.Fatalf("expected idle before first call, got %q", got)
	}

	out, err := m.Mutate(context.Background(), "abc")
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if out != 3 {
		t.Fatalf("expected 3, got %d", out)
	}

	if diff := cmp.Diff([]string{"mutate", "fn:abc", "success", "settled"}, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	state := m.State()
	if state.Status != mutation.StatusSuccess || state.Data != 3 || state.Err != nil {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestMutation_ErrorLifecycle(t *testing.T) {
	boom := errors.New("boom")
	var gotErr error
	settled := 0
	m := mutation.New(
		func(context.Context, int) (string, error) { return "", boom },
		mutation.OnError[int, string](func(_ context.Context, err error, _ int) { gotErr = err }),
		mutation.OnSettled[int, string](func(context.Context, string, error, int) { settled++ }),
	)

	if _, err := m.Mutate(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !errors.Is(gotErr, boom) || settled != 1 {
		t.Fatalf("callbacks not invoked: err=%v settled=%d", gotErr, settled)
	}
	if state := m.State(); state.Status != mutation.StatusError || !errors.Is(state.Err, boom) {
		t.Fatalf("unexpected state %+v", state)
	}

	m.Reset()
	if got := m.State().Status; got != mutation.StatusIdle {
		t.Fatalf("expected idle after reset, got %q", got)
	}
}

func TestMutation_PendingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := mutation.New(func(ctx context.Context, _ struct{}) (bool, error) {
		close(started)
		<-release
		return true, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Mutate(context.Background(), struct{}{})
	}()

	<-started
	if !m.State().IsPending() {
		t.Fatalf("expected pending state while call is in flight")
	}
	close(release)
	<-done
	if got := m.State().Status; got != mutation.StatusSuccess {
		t.Fatalf("expected success, got %q", got)
	}
}

func TestMutation_ResetDuringFlightKeepsIdle(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := mutation.New(func(context.Context, int) (int, error) {
		close(started)
		<-release
		return 1, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Mutate(context.Background(), 0)
	}()
	<-started
	m.Reset()
	close(release)
	<-done

	if got := m.State().Status; got != mutation.StatusIdle {
		t.Fatalf("expected idle after reset, got %q", got)
	}
}

func TestMutation_NilFunc(t *testing.T) {
	m := mutation.New[int, int](nil)
	if _, err := m.Mutate(context.Background(), 1); !errors.Is(err, mutation.ErrNilFunc) {
		t.Fatalf("expected ErrNilFunc, got %v", err)
	}
}

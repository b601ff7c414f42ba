package profile_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/failure"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/notify"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/profile"
	"github.com/goliatone/go-donorform/pkg/testsupport"
)

var current = person.Person{
	ID:        "p-1",
	FirstName: "Мария",
	LastName:  "Петрова",
	Email:     "maria@example.com",
}

type harness struct {
	modal    *profile.Modal
	flow     *profile.Flow
	store    *notify.Store
	verifies atomic.Int32
	updates  atomic.Int32
	sent     person.UpdatePerson

	mu     sync.Mutex
	closed []*person.Person
}

func (h *harness) closes() []*person.Person {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*person.Person(nil), h.closed...)
}

func newHarness(t *testing.T, verify auth.VerifierFunc, update person.UpdaterFunc) *harness {
	t.Helper()
	h := &harness{store: notify.NewStore()}
	translate := testsupport.Translate(t, "en")

	countingVerify := auth.VerifierFunc(func(ctx context.Context, creds auth.Credentials) (*auth.Session, error) {
		h.verifies.Add(1)
		return verify(ctx, creds)
	})
	countingUpdate := person.UpdaterFunc(func(ctx context.Context, in person.UpdatePerson) (person.Person, error) {
		h.updates.Add(1)
		h.sent = in
		return update(ctx, in)
	})

	h.flow = profile.NewFlow(countingVerify, countingUpdate,
		profile.WithNotifier(h.store),
		profile.WithTranslator(translate),
	)
	modal, err := profile.NewModal(h.flow, current,
		profile.WithHandler(failure.NewHandler(
			failure.WithNotifier(h.store),
			failure.WithTranslator(translate),
		)),
		profile.WithOnClose(func(_ context.Context, record *person.Person) {
			h.mu.Lock()
			h.closed = append(h.closed, record)
			h.mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("new modal: %v", err)
	}
	if err := modal.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	h.modal = modal
	return h
}

func fill(t *testing.T, m *profile.Modal, first, last, password string) {
	t.Helper()
	values := map[string]string{
		profile.FieldFirstName: first,
		profile.FieldLastName:  last,
		profile.FieldPassword:  password,
	}
	for _, binding := range m.Bindings() {
		if err := binding.OnChange(values[binding.Name()]); err != nil {
			t.Fatalf("change %s: %v", binding.Name(), err)
		}
	}
}

func acceptAll(context.Context, auth.Credentials) (*auth.Session, error) {
	return &auth.Session{Email: current.Email}, nil
}

func echoUpdate(_ context.Context, in person.UpdatePerson) (person.Person, error) {
	return person.Person{ID: current.ID, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}, nil
}

func alertTexts(store *notify.Store) []string {
	var out []string
	for _, alert := range store.Alerts() {
		out = append(out, string(alert.Level)+":"+alert.Message)
	}
	return out
}

func TestModal_InvalidLoginClosesWithoutUpdate(t *testing.T) {
	h := newHarness(t,
		func(context.Context, auth.Credentials) (*auth.Session, error) { return nil, auth.ErrInvalidCredentials },
		echoUpdate,
	)
	fill(t, h.modal, "Ива", "Колева", "wrong-password")

	if err := h.modal.Submit(context.Background()); err != nil {
		t.Fatalf("submit should swallow flow failures, got %v", err)
	}

	if h.modal.IsOpen() {
		t.Fatalf("expected modal to close after invalid login")
	}
	if got := h.updates.Load(); got != 0 {
		t.Fatalf("expected no update call, got %d", got)
	}
	if diff := cmp.Diff([]string{"error:Invalid login."}, alertTexts(h.store)); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}
	if closes := h.closes(); len(closes) != 1 || closes[0] != nil {
		t.Fatalf("expected one close without record, got %v", closes)
	}
}

func TestModal_InvalidLoginClosesBeforeNotice(t *testing.T) {
	store := notify.NewStore()
	translate := testsupport.Translate(t, "en")
	flow := profile.NewFlow(
		auth.VerifierFunc(func(context.Context, auth.Credentials) (*auth.Session, error) {
			return nil, auth.ErrInvalidCredentials
		}),
		person.UpdaterFunc(echoUpdate),
	)

	var closed bool
	var alertsAtClose []string
	modal, err := profile.NewModal(flow, current,
		profile.WithHandler(failure.NewHandler(
			failure.WithNotifier(store),
			failure.WithTranslator(translate),
		)),
		profile.WithOnClose(func(context.Context, *person.Person) {
			closed = true
			alertsAtClose = alertTexts(store)
		}),
	)
	if err != nil {
		t.Fatalf("new modal: %v", err)
	}
	if err := modal.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	fill(t, modal, "Ива", "Колева", "wrong-password")

	if err := modal.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !closed {
		t.Fatalf("expected the modal to close after invalid login")
	}
	if len(alertsAtClose) != 0 {
		t.Fatalf("expected the modal to close before the notice, saw %v", alertsAtClose)
	}
	if diff := cmp.Diff([]string{"error:Invalid login."}, alertTexts(store)); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}
}

func TestModal_SuccessfulUpdateCompletesWithRecord(t *testing.T) {
	var creds []auth.Credentials
	var mu sync.Mutex
	h := newHarness(t,
		func(_ context.Context, c auth.Credentials) (*auth.Session, error) {
			mu.Lock()
			creds = append(creds, c)
			mu.Unlock()
			return &auth.Session{}, nil
		},
		echoUpdate,
	)
	fill(t, h.modal, "Ива", "Колева", "secret1")

	if err := h.modal.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := person.Person{ID: "p-1", FirstName: "Ива", LastName: "Колева", Email: "maria@example.com"}
	closes := h.closes()
	if len(closes) != 1 || closes[0] == nil {
		t.Fatalf("expected one close with record, got %v", closes)
	}
	if diff := cmp.Diff(want, *closes[0]); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, h.modal.Current()); diff != "" {
		t.Fatalf("current mismatch (-want +got):\n%s", diff)
	}
	if h.modal.IsOpen() {
		t.Fatalf("expected modal to close after success")
	}
	if diff := cmp.Diff([]string{"success:Success!"}, alertTexts(h.store)); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}

	wantCreds := []auth.Credentials{
		{Email: "maria@example.com", Password: "secret1"},
		{Email: "maria@example.com", Password: "secret1"},
	}
	if diff := cmp.Diff(wantCreds, creds); diff != "" {
		t.Fatalf("credential checks mismatch (-want +got):\n%s", diff)
	}
	if h.sent.Email != "maria@example.com" || h.sent.FirstName != "Ива" {
		t.Fatalf("unexpected update payload %+v", h.sent)
	}
}

func TestModal_UpdateSendsTrimmedNames(t *testing.T) {
	h := newHarness(t, acceptAll, echoUpdate)
	fill(t, h.modal, "  Ива ", "\tКолева  ", "secret1")

	if err := h.modal.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if h.sent.FirstName != "Ива" || h.sent.LastName != "Колева" {
		t.Fatalf("expected trimmed names in update, got %+v", h.sent)
	}
	if got := h.modal.Current(); got.FirstName != "Ива" || got.LastName != "Колева" {
		t.Fatalf("expected trimmed names on record, got %+v", got)
	}
}

func TestModal_UpdateFailureKeepsFormOpen(t *testing.T) {
	h := newHarness(t, acceptAll,
		func(context.Context, person.UpdatePerson) (person.Person, error) {
			return person.Person{}, errors.New("connection reset")
		},
	)
	fill(t, h.modal, "Ива", "Колева", "secret1")

	if err := h.modal.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !h.modal.IsOpen() {
		t.Fatalf("expected modal to stay open after update failure")
	}
	if diff := cmp.Diff([]string{"error:An error occurred. Please try again."}, alertTexts(h.store)); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}
	wantValues := form.Values{"firstName": "Ива", "lastName": "Колева", "password": "secret1"}
	if diff := cmp.Diff(wantValues, h.modal.Form().Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(h.closes()) != 0 {
		t.Fatalf("expected no close callback")
	}
	if got := h.verifies.Load(); got != 1 {
		t.Fatalf("expected a single credential check, got %d", got)
	}
	if h.flow.UpdateState().Err == nil {
		t.Fatalf("expected mutation state to record the error")
	}
	if h.modal.Form().Pending() {
		t.Fatalf("expected pending to clear after failure")
	}
}

func TestModal_APIErrorsSurfaceOnFields(t *testing.T) {
	h := newHarness(t, acceptAll,
		func(context.Context, person.UpdatePerson) (person.Person, error) {
			return person.Person{}, &person.APIError{
				Status: 400,
				Fields: map[string][]string{"firstName": {"firstName is taken"}},
			}
		},
	)
	fill(t, h.modal, "Ива", "Колева", "secret1")

	if err := h.modal.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff([]string{"firstName is taken"}, h.modal.Form().ServerErrors("firstName")); diff != "" {
		t.Fatalf("server errors mismatch (-want +got):\n%s", diff)
	}
}

func TestModal_InvalidValuesNeverReachFlow(t *testing.T) {
	h := newHarness(t, acceptAll, echoUpdate)
	fill(t, h.modal, "", "К", "123")

	err := h.modal.Submit(context.Background())
	var invalid *form.InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *form.InvalidError, got %v", err)
	}
	if diff := cmp.Diff([]string{"firstName", "lastName", "password"}, invalid.Errors.Fields()); diff != "" {
		t.Fatalf("invalid fields mismatch (-want +got):\n%s", diff)
	}
	if h.verifies.Load() != 0 || h.updates.Load() != 0 {
		t.Fatalf("expected no calls, verify=%d update=%d", h.verifies.Load(), h.updates.Load())
	}
	for _, binding := range h.modal.Bindings() {
		if _, ok := binding.Error(); !ok {
			t.Fatalf("expected visible error on %s after submit", binding.Name())
		}
	}
}

func TestModal_SecondSubmitWhilePendingIsIgnored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	h := newHarness(t,
		func(context.Context, auth.Credentials) (*auth.Session, error) {
			select {
			case <-started:
			default:
				close(started)
			}
			<-release
			return &auth.Session{}, nil
		},
		echoUpdate,
	)
	fill(t, h.modal, "Ива", "Колева", "secret1")

	done := make(chan error, 1)
	go func() { done <- h.modal.Submit(context.Background()) }()
	<-started

	if err := h.modal.Submit(context.Background()); !errors.Is(err, form.ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if got := h.updates.Load(); got != 1 {
		t.Fatalf("expected exactly one update call, got %d", got)
	}
}

func TestModal_CloseCancelsInFlightSubmission(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t,
		func(ctx context.Context, _ auth.Credentials) (*auth.Session, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
		echoUpdate,
	)
	fill(t, h.modal, "Ива", "Колева", "secret1")

	done := make(chan error, 1)
	go func() { done <- h.modal.Submit(context.Background()) }()
	<-started
	h.modal.Close(context.Background())

	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := h.updates.Load(); got != 0 {
		t.Fatalf("expected no update after cancel, got %d", got)
	}
	if closes := h.closes(); len(closes) != 1 || closes[0] != nil {
		t.Fatalf("expected a single close without record, got %v", closes)
	}
	if len(h.store.Alerts()) != 0 {
		t.Fatalf("expected no notices for a cancelled flow, got %+v", h.store.Alerts())
	}
}

func TestFlow_RefreshFailureIsIgnored(t *testing.T) {
	var calls atomic.Int32
	flow := profile.NewFlow(
		auth.VerifierFunc(func(context.Context, auth.Credentials) (*auth.Session, error) {
			if calls.Add(1) == 2 {
				return nil, errors.New("refresh failed")
			}
			return &auth.Session{}, nil
		}),
		person.UpdaterFunc(echoUpdate),
	)

	var completed *person.Person
	values := profile.InitialValues(current)
	values[profile.FieldPassword] = "secret1"
	record, err := flow.Run(context.Background(), current, values, func(_ context.Context, p person.Person) {
		completed = &p
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if completed == nil || completed.FirstName != record.FirstName {
		t.Fatalf("expected completion with record, got %v", completed)
	}
}

func TestFlow_VerifyFailureIsAuthKind(t *testing.T) {
	flow := profile.NewFlow(
		auth.VerifierFunc(func(context.Context, auth.Credentials) (*auth.Session, error) {
			return nil, auth.ErrInvalidCredentials
		}),
		person.UpdaterFunc(echoUpdate),
	)

	_, err := flow.Run(context.Background(), current, profile.InitialValues(current), nil)
	if !failure.Is(err, failure.KindAuth) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestModal_SubmitWhenClosed(t *testing.T) {
	h := newHarness(t, acceptAll, echoUpdate)
	h.modal.Close(context.Background())
	if err := h.modal.Submit(context.Background()); !errors.Is(err, profile.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if h.modal.Form() != nil || h.modal.Bindings() != nil {
		t.Fatalf("expected no form while closed")
	}
}

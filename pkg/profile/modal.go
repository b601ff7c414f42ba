package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-donorform/pkg/failure"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/validation"
)

// CloseFunc is called whenever the modal closes. record is nil unless the
// update completed.
type CloseFunc func(ctx context.Context, record *person.Person)

// ModalOption configures a Modal.
type ModalOption func(*Modal)

// WithHandler sets the handler that routes flow failures.
func WithHandler(h *failure.Handler) ModalOption {
	return func(m *Modal) {
		if h != nil {
			m.handler = h
		}
	}
}

// WithOnClose registers the completion callback.
func WithOnClose(fn CloseFunc) ModalOption {
	return func(m *Modal) {
		m.onClose = fn
	}
}

// WithModalLogger sets the logger handed to the form container.
func WithModalLogger(logger *slog.Logger) ModalOption {
	return func(m *Modal) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Modal hosts the name-update form. Each Open starts a fresh form seeded
// from the current record; Close cancels any submission in flight.
type Modal struct {
	flow    *Flow
	handler *failure.Handler
	onClose CloseFunc
	logger  *slog.Logger
	decl    model.FormModel
	schema  *validation.Schema

	mu        sync.Mutex
	current   person.Person
	open      bool
	container *form.Container
	bindings  []*form.Binding
	cancel    context.CancelFunc
}

// NewModal builds a closed modal for current.
func NewModal(flow *Flow, current person.Person, opts ...ModalOption) (*Modal, error) {
	if flow == nil {
		return nil, errors.New("profile: flow is required")
	}
	decl := UpdateNameForm()
	schema, err := validation.FromForm(decl)
	if err != nil {
		return nil, fmt.Errorf("profile: build schema: %w", err)
	}

	m := &Modal{
		flow:    flow,
		handler: failure.NewHandler(),
		logger:  slog.New(slog.DiscardHandler),
		decl:    decl,
		schema:  schema,
		current: current,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m, nil
}

// Open shows the modal with a fresh form. Opening an open modal keeps the
// current form.
func (m *Modal) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return nil
	}

	container, err := form.New(InitialValues(m.current), m.schema, m.submit, form.WithLogger(m.logger))
	if err != nil {
		return fmt.Errorf("profile: new form: %w", err)
	}
	bindings := make([]*form.Binding, 0, len(m.decl.Fields))
	for _, field := range m.decl.Fields {
		binding, err := form.Bind(container, field)
		if err != nil {
			return fmt.Errorf("profile: bind %q: %w", field.Name, err)
		}
		bindings = append(bindings, binding)
	}

	m.container = container
	m.bindings = bindings
	m.open = true
	return nil
}

// Close hides the modal and cancels a submission in flight.
func (m *Modal) Close(ctx context.Context) {
	m.close(ctx, nil)
}

// IsOpen reports whether the modal is shown.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Current returns the record the form is seeded from.
func (m *Modal) Current() person.Person {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Declaration returns the form declaration rendered by the modal.
func (m *Modal) Declaration() model.FormModel {
	return m.decl
}

// Form returns the container of the open modal, or nil when closed.
func (m *Modal) Form() *form.Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil
	}
	return m.container
}

// Bindings returns the field bindings in declaration order.
func (m *Modal) Bindings() []*form.Binding {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil
	}
	return append([]*form.Binding(nil), m.bindings...)
}

// Submit submits the open form. Validation problems return *form.InvalidError
// and a second submit while one is running returns form.ErrPending. Flow
// failures are handed to the failure handler and not returned.
func (m *Modal) Submit(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrClosed
	}
	container := m.container
	m.mu.Unlock()

	err := container.Submit(ctx)
	var invalid *form.InvalidError
	if err == nil || errors.As(err, &invalid) || errors.Is(err, form.ErrPending) {
		return err
	}
	return nil
}

func (m *Modal) submit(ctx context.Context, values form.Values) error {
	runCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	current := m.current
	container := m.container
	m.mu.Unlock()
	defer func() {
		cancel()
		m.mu.Lock()
		m.cancel = nil
		m.mu.Unlock()
	}()

	_, err := m.flow.Run(runCtx, current, values, func(ctx context.Context, record person.Person) {
		m.mu.Lock()
		m.current = record
		m.mu.Unlock()
		m.close(ctx, &record)
	})
	if err == nil {
		return nil
	}

	if m.handler.Closes(err) {
		m.close(ctx, nil)
	}
	m.handler.Handle(ctx, err)
	var apiErr *person.APIError
	if errors.As(err, &apiErr) {
		container.SetServerErrors(render.MapErrorPayload(m.decl, apiErr.Payload()))
	}
	return err
}

func (m *Modal) close(ctx context.Context, record *person.Person) {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return
	}
	m.open = false
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil && record == nil {
		cancel()
	}
	if m.onClose != nil {
		m.onClose(ctx, record)
	}
}

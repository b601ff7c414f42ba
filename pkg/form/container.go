package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/validation"
)

// SubmitFunc receives a snapshot of valid values. Its error is returned from
// Container.Submit untouched.
type SubmitFunc func(ctx context.Context, values Values) error

// Option configures a Container.
type Option func(*Container)

// WithLogger routes container diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Container owns the state of one form instance: values, touched flags,
// validation errors and the pending flag that keeps submissions
// single-flight.
type Container struct {
	mu sync.Mutex

	schema *validation.Schema
	submit SubmitFunc
	logger *slog.Logger

	values     Values
	touched    map[string]bool
	errors     validation.Errors
	server     map[string][]string
	formErrors []string
	submitted  bool
	pending    bool
}

// New seeds a container with initial values. Fields the schema declares but
// initial omits start at their zero value; keys the schema does not declare
// are rejected.
func New(initial Values, schema *validation.Schema, submit SubmitFunc, opts ...Option) (*Container, error) {
	if schema == nil {
		return nil, errors.New("form: schema is required")
	}
	if submit == nil {
		return nil, errors.New("form: submit callback is required")
	}

	c := &Container{
		schema:  schema,
		submit:  submit,
		logger:  slog.New(slog.DiscardHandler),
		values:  make(Values, len(schema.Fields())),
		touched: make(map[string]bool),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}

	for name, value := range initial {
		if err := c.checkValue(name, value); err != nil {
			return nil, err
		}
	}
	for _, name := range schema.Fields() {
		if value, ok := initial[name]; ok {
			c.values[name] = value
			continue
		}
		kind, _ := schema.Kind(name)
		c.values[name] = validation.Zero(kind)
	}
	c.errors = schema.Validate(c.values)
	return c, nil
}

// Schema returns the schema the container validates against.
func (c *Container) Schema() *validation.Schema {
	return c.schema
}

// Values returns a copy of the current values.
func (c *Container) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

// Value returns the current value for name.
func (c *Container) Value(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[name]
	return value, ok
}

// SetValue writes a value and re-validates that field. Server errors
// attached to the field are cleared since they described the old value.
func (c *Container) SetValue(name string, value any) error {
	if err := c.checkValue(name, value); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[name] = value
	delete(c.server, name)
	if issue, failed := c.schema.ValidateField(name, c.values); failed {
		c.errors[name] = issue
	} else {
		delete(c.errors, name)
	}
	return nil
}

// Touch marks a field as interacted with so its error becomes visible.
func (c *Container) Touch(name string) error {
	if !c.schema.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched[name] = true
	return nil
}

// Touched reports whether the field has been interacted with.
func (c *Container) Touched(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[name]
}

// Submitted reports whether a submit has been attempted.
func (c *Container) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

// Pending reports whether a submit callback is running.
func (c *Container) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Errors returns every current validation issue, visible or not.
func (c *Container) Errors() validation.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.errors)
}

// VisibleError returns the field's issue once the field was touched or a
// submit was attempted.
func (c *Container) VisibleError(name string) (validation.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.touched[name] && !c.submitted {
		return validation.Issue{}, false
	}
	issue, ok := c.errors[name]
	return issue, ok
}

// ServerErrors returns messages the backend attached to the field.
func (c *Container) ServerErrors(name string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.server[name]...)
}

// FormErrors returns backend messages that did not map onto a field.
func (c *Container) FormErrors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.formErrors...)
}

// SetServerErrors surfaces a mapped backend error payload. Field messages for
// undeclared fields are demoted to form-level messages.
func (c *Container) SetServerErrors(mapping render.ErrorMapping) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.server = make(map[string][]string, len(mapping.Fields))
	formErrors := append([]string(nil), mapping.Form...)
	for name, messages := range mapping.Fields {
		if !c.schema.Has(name) {
			formErrors = append(formErrors, messages...)
			continue
		}
		c.server[name] = append([]string(nil), messages...)
		c.touched[name] = true
	}
	c.formErrors = render.MergeFormErrors(nil, formErrors...)
}

// Submit validates all fields and, when valid and not already pending,
// invokes the submit callback exactly once. The callback sees trimmed fields
// without surrounding whitespace. Invalid values mark every field touched
// and return *InvalidError. Values are never reset.
func (c *Container) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "form submit ignored while pending")
		return ErrPending
	}

	c.submitted = true
	c.errors = c.schema.Validate(c.values)
	if !c.errors.Valid() {
		for _, name := range c.schema.Fields() {
			c.touched[name] = true
		}
		errs := maps.Clone(c.errors)
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "form submit blocked by validation", slog.Any("fields", errs.Fields()))
		return &InvalidError{Errors: errs}
	}

	c.pending = true
	c.server = nil
	c.formErrors = nil
	snapshot := Values(c.schema.Normalize(c.values))
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	return c.submit(ctx, snapshot)
}

func (c *Container) checkValue(name string, value any) error {
	kind, ok := c.schema.Kind(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	switch value.(type) {
	case bool:
		if kind != model.FieldTypeBoolean {
			return fmt.Errorf("%w: %q expects text", ErrValueType, name)
		}
	case string:
		if kind == model.FieldTypeBoolean {
			return fmt.Errorf("%w: %q expects a checkbox value", ErrValueType, name)
		}
	default:
		return fmt.Errorf("%w: %q got %T", ErrValueType, name, value)
	}
	return nil
}

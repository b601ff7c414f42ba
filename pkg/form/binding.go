package form

import (
	"fmt"

	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/validation"
)

// Binding connects one input widget to a named value in a Container.
type Binding struct {
	form   *Container
	name   string
	widget model.Widget
}

// TextField binds a text input to a string field.
func TextField(c *Container, name string) (*Binding, error) {
	return bind(c, name, model.WidgetText, model.FieldTypeString)
}

// PasswordField binds a masked input to a string field.
func PasswordField(c *Container, name string) (*Binding, error) {
	return bind(c, name, model.WidgetPassword, model.FieldTypeString)
}

// CheckboxField binds a checkbox to a bool field.
func CheckboxField(c *Container, name string) (*Binding, error) {
	return bind(c, name, model.WidgetCheckbox, model.FieldTypeBoolean)
}

// Bind picks the binding constructor matching the field declaration.
func Bind(c *Container, field model.Field) (*Binding, error) {
	switch {
	case field.IsBoolean():
		return CheckboxField(c, field.Name)
	case field.Widget == model.WidgetPassword:
		return PasswordField(c, field.Name)
	default:
		b, err := TextField(c, field.Name)
		if err != nil {
			return nil, err
		}
		if field.Widget != "" {
			b.widget = field.Widget
		}
		return b, nil
	}
}

func bind(c *Container, name string, widget model.Widget, want model.FieldType) (*Binding, error) {
	if c == nil {
		return nil, fmt.Errorf("form: bind %q: container is nil", name)
	}
	kind, ok := c.schema.Kind(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if kind != want {
		return nil, fmt.Errorf("%w: %s widget cannot bind %q (%s)", ErrValueType, widget, name, kind)
	}
	return &Binding{form: c, name: name, widget: widget}, nil
}

// Name returns the bound field name.
func (b *Binding) Name() string { return b.name }

// Widget returns the widget kind.
func (b *Binding) Widget() model.Widget { return b.widget }

// Value returns the raw bound value.
func (b *Binding) Value() any {
	value, _ := b.form.Value(b.name)
	return value
}

// Text returns the bound string value.
func (b *Binding) Text() string {
	s, _ := b.Value().(string)
	return s
}

// Checked returns the bound checkbox state.
func (b *Binding) Checked() bool {
	v, _ := b.Value().(bool)
	return v
}

// OnChange writes a new value and re-validates the field.
func (b *Binding) OnChange(value any) error {
	return b.form.SetValue(b.name, value)
}

// OnBlur marks the field touched.
func (b *Binding) OnBlur() {
	_ = b.form.Touch(b.name)
}

// Error returns the visible validation issue, if any.
func (b *Binding) Error() (validation.Issue, bool) {
	return b.form.VisibleError(b.name)
}

// ErrorText returns the message to display under the widget: the visible
// validation issue first, then the first server message.
func (b *Binding) ErrorText(translate i18n.Func) string {
	if issue, ok := b.Error(); ok {
		return issue.Message(translate)
	}
	if server := b.form.ServerErrors(b.name); len(server) > 0 {
		return server[0]
	}
	return ""
}

package model

// FieldType is the value kind stored for a field in form state.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
)

// Widget selects the input control a renderer draws for a field.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetPassword Widget = "password"
	WidgetEmail    Widget = "email"
	WidgetCheckbox Widget = "checkbox"
	WidgetTextarea Widget = "textarea"
)

const (
	ValidationRuleRequired  = "required"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleEmail     = "email"
)

// ValidationRule represents a single constraint applied to a field. Length
// limits encode their threshold in Params["value"] while pattern rules keep
// the expression in Params["pattern"]. MessageKey overrides the translation
// key reported when the rule fails.
type ValidationRule struct {
	Kind       string            `json:"kind"`
	Params     map[string]string `json:"params,omitempty"`
	MessageKey string            `json:"messageKey,omitempty"`
}

// Field declares a single input inside a form.
type Field struct {
	Name         string            `json:"name"`
	Type         FieldType         `json:"type"`
	Widget       Widget            `json:"widget,omitempty"`
	Required     bool              `json:"required"`
	Trim         bool              `json:"trim,omitempty"`
	Label        string            `json:"label,omitempty"`
	LabelKey     string            `json:"labelKey,omitempty"`
	Placeholder  string            `json:"placeholder,omitempty"`
	Description  string            `json:"description,omitempty"`
	AutoComplete string            `json:"autoComplete,omitempty"`
	Default      any               `json:"default,omitempty"`
	Nested       []Field           `json:"nested,omitempty"`
	Validations  []ValidationRule  `json:"validations,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	UIHints      map[string]string `json:"uiHints,omitempty"`
}

// IsBoolean reports whether the field stores a bool value.
func (f Field) IsBoolean() bool {
	return f.Type == FieldTypeBoolean || f.Widget == WidgetCheckbox
}

// FormModel is the top-level declaration renderers and the form container
// consume.
type FormModel struct {
	ID          string            `json:"id"`
	Endpoint    string            `json:"endpoint,omitempty"`
	Method      string            `json:"method,omitempty"`
	Title       string            `json:"title,omitempty"`
	TitleKey    string            `json:"titleKey,omitempty"`
	SubmitLabel string            `json:"submitLabel,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Field looks up a top-level field by name.
func (f FormModel) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

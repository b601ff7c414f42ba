package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-donorform/pkg/model"
)

// Translation keys reported by the built-in rules.
const (
	KeyRequired      = "validation:required"
	KeyInvalid       = "validation:invalid"
	KeyEmail         = "validation:email"
	KeyFieldTooShort = "validation:field-too-short"
	KeyFieldTooLong  = "validation:field-too-long"
	KeyPasswordMin   = "validation:password-min"
)

var (
	// ErrDuplicateField is returned when a schema declares a field twice.
	ErrDuplicateField = errors.New("validation: duplicate field")
	// ErrUnknownRule is returned for rule kinds the schema cannot compile.
	ErrUnknownRule = errors.New("validation: unknown rule")
)

// FieldSchema is the static declaration of one field's rules.
type FieldSchema struct {
	Name  string
	Kind  model.FieldType
	Trim  bool
	Rules []model.ValidationRule
}

// String declares a string field.
func String(name string, rules ...model.ValidationRule) FieldSchema {
	return FieldSchema{Name: name, Kind: model.FieldTypeString, Rules: rules}
}

// Bool declares a checkbox field.
func Bool(name string, rules ...model.ValidationRule) FieldSchema {
	return FieldSchema{Name: name, Kind: model.FieldTypeBoolean, Rules: rules}
}

// Trimmed validates the field against its whitespace-trimmed value.
func (f FieldSchema) Trimmed() FieldSchema {
	f.Trim = true
	return f
}

// Required marks the value as mandatory. For checkboxes this means checked.
func Required() model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleRequired}
}

// MinLength requires at least n runes.
func MinLength(n int) model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// MaxLength allows at most n runes.
func MaxLength(n int) model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// Pattern requires the value to match expr.
func Pattern(expr string) model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": expr}}
}

// Email requires a syntactically valid email address.
func Email() model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleEmail}
}

// WithMessage overrides the translation key reported by rule.
func WithMessage(rule model.ValidationRule, key string) model.ValidationRule {
	rule.MessageKey = key
	return rule
}

type check struct {
	key    string
	params map[string]any
	rule   ozzo.Rule
}

type compiledField struct {
	FieldSchema
	checks []check
}

// Schema validates a snapshot of form values. It is immutable once built, so
// the same instance serves per-keystroke and submit validation.
type Schema struct {
	fields []compiledField
	index  map[string]int
}

// New compiles the field declarations into a schema.
func New(fields ...FieldSchema) (*Schema, error) {
	schema := &Schema{index: make(map[string]int, len(fields))}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, errors.New("validation: field name is required")
		}
		if _, exists := schema.index[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		field.Name = name
		if field.Kind == "" {
			field.Kind = model.FieldTypeString
		}

		checks := make([]check, 0, len(field.Rules))
		for _, rule := range field.Rules {
			c, err := compileRule(field, rule)
			if err != nil {
				return nil, fmt.Errorf("validation: field %q: %w", name, err)
			}
			checks = append(checks, c)
		}

		schema.index[name] = len(schema.fields)
		schema.fields = append(schema.fields, compiledField{FieldSchema: field, checks: checks})
	}
	return schema, nil
}

// MustNew panics when the declarations do not compile. Intended for
// package-level schema variables.
func MustNew(fields ...FieldSchema) *Schema {
	schema, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return schema
}

// FromForm derives a schema from a form declaration. Field.Required adds a
// leading required rule unless the field already declares one.
func FromForm(form model.FormModel) (*Schema, error) {
	fields := make([]FieldSchema, 0, len(form.Fields))
	for _, field := range form.Fields {
		kind := model.FieldTypeString
		if field.IsBoolean() {
			kind = model.FieldTypeBoolean
		}

		rules := make([]model.ValidationRule, 0, len(field.Validations)+1)
		if field.Required && !hasRule(field.Validations, model.ValidationRuleRequired) {
			rules = append(rules, Required())
		}
		rules = append(rules, field.Validations...)
		if field.Widget == model.WidgetEmail && !hasRule(rules, model.ValidationRuleEmail) {
			rules = append(rules, Email())
		}

		fields = append(fields, FieldSchema{
			Name:  field.Name,
			Kind:  kind,
			Trim:  field.Trim,
			Rules: rules,
		})
	}
	return New(fields...)
}

// Fields lists the declared field names in declaration order.
func (s *Schema) Fields() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		names = append(names, field.Name)
	}
	return names
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Kind returns the declared value kind for name.
func (s *Schema) Kind(name string) (model.FieldType, bool) {
	if s == nil {
		return "", false
	}
	idx, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.fields[idx].Kind, true
}

// Zero returns the empty value for a field kind.
func Zero(kind model.FieldType) any {
	if kind == model.FieldTypeBoolean {
		return false
	}
	return ""
}

// Validate checks every declared field and returns one issue per failing
// field. An empty result means the values are valid.
func (s *Schema) Validate(values map[string]any) Errors {
	errs := make(Errors)
	if s == nil {
		return errs
	}
	for _, field := range s.fields {
		if issue, failed := field.validate(values[field.Name]); failed {
			errs[field.Name] = issue
		}
	}
	return errs
}

// ValidateField checks a single field. The boolean is false when the field
// passes or is not declared.
func (s *Schema) ValidateField(name string, values map[string]any) (Issue, bool) {
	if s == nil {
		return Issue{}, false
	}
	idx, ok := s.index[name]
	if !ok {
		return Issue{}, false
	}
	return s.fields[idx].validate(values[name])
}

// Normalize returns a copy of values with trimmed fields stripped of
// surrounding whitespace. Undeclared keys are copied as is.
func (s *Schema) Normalize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for name, value := range values {
		out[name] = value
	}
	if s == nil {
		return out
	}
	for _, field := range s.fields {
		if !field.Trim || field.Kind == model.FieldTypeBoolean {
			continue
		}
		if text, ok := out[field.Name].(string); ok {
			out[field.Name] = strings.TrimSpace(text)
		}
	}
	return out
}

func (f compiledField) validate(raw any) (Issue, bool) {
	value := f.normalize(raw)
	for _, c := range f.checks {
		if err := c.rule.Validate(value); err != nil {
			return Issue{
				Field:   f.Name,
				Key:     c.key,
				Params:  c.params,
				Default: err.Error(),
			}, true
		}
	}
	return Issue{}, false
}

func (f compiledField) normalize(raw any) any {
	if f.Kind == model.FieldTypeBoolean {
		b, _ := raw.(bool)
		return b
	}
	s, _ := raw.(string)
	if f.Trim {
		s = strings.TrimSpace(s)
	}
	return s
}

func compileRule(field FieldSchema, rule model.ValidationRule) (check, error) {
	c := check{key: strings.TrimSpace(rule.MessageKey)}
	setKey := func(key string) {
		if c.key == "" {
			c.key = key
		}
	}

	switch rule.Kind {
	case model.ValidationRuleRequired:
		c.rule = ozzo.Required
		setKey(KeyRequired)
	case model.ValidationRuleMinLength:
		n, err := intParam(rule)
		if err != nil {
			return check{}, err
		}
		c.rule = ozzo.RuneLength(n, 0)
		c.params = map[string]any{"min": n}
		setKey(KeyFieldTooShort)
	case model.ValidationRuleMaxLength:
		n, err := intParam(rule)
		if err != nil {
			return check{}, err
		}
		c.rule = ozzo.RuneLength(0, n)
		c.params = map[string]any{"max": n}
		setKey(KeyFieldTooLong)
	case model.ValidationRulePattern:
		expr := rule.Params["pattern"]
		re, err := regexp.Compile(expr)
		if err != nil {
			return check{}, fmt.Errorf("compile pattern %q: %w", expr, err)
		}
		c.rule = ozzo.Match(re)
		c.params = map[string]any{"pattern": expr}
		setKey(KeyInvalid)
	case model.ValidationRuleEmail:
		c.rule = is.EmailFormat
		setKey(KeyEmail)
	default:
		return check{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule.Kind)
	}

	if field.Kind == model.FieldTypeBoolean && rule.Kind != model.ValidationRuleRequired {
		return check{}, fmt.Errorf("%w: %q on checkbox", ErrUnknownRule, rule.Kind)
	}
	return c, nil
}

func intParam(rule model.ValidationRule) (int, error) {
	raw := strings.TrimSpace(rule.Params["value"])
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("rule %q: invalid length %q", rule.Kind, raw)
	}
	return n, nil
}

func hasRule(rules []model.ValidationRule, kind string) bool {
	for _, rule := range rules {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/validation"
)

const defaultMaxAttempts = 5

// Renderer implements render.Renderer for terminal-driven sessions. Each
// field is prompted through a form.Binding so the terminal follows the same
// validation and error visibility rules as the HTML forms.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		out:          os.Stdout,
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		maxAttempts:  defaultMaxAttempts,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts every field of form, validates the answers and returns the
// collected values serialized in the configured output format.
func (r *Renderer) Render(ctx context.Context, fm model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := validation.FromForm(fm)
	if err != nil {
		return nil, fmt.Errorf("tui: build schema: %w", err)
	}

	var collected form.Values
	container, err := form.New(initialValues(schema, opts.Values), schema, func(_ context.Context, values form.Values) error {
		collected = values
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tui: seed form: %w", err)
	}
	if len(opts.Errors) > 0 || len(opts.FormErrors) > 0 {
		container.SetServerErrors(render.ErrorMapping{Fields: opts.Errors, Form: opts.FormErrors})
	}

	if err := r.Fill(ctx, fm, container, opts); err != nil {
		return nil, err
	}
	if err := container.Submit(ctx); err != nil {
		return nil, fmt.Errorf("tui: submit: %w", err)
	}

	values := map[string]any(collected)
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

// Fill prompts each field of fm into c. Server errors already attached to
// the container are printed before the matching prompt. Fill does not
// submit.
func (r *Renderer) Fill(ctx context.Context, fm model.FormModel, c *form.Container, opts render.RenderOptions) error {
	if r.driver == nil {
		return ErrNoDriver
	}
	localized := fm
	localized.Fields = append([]model.Field(nil), fm.Fields...)
	render.LocalizeFormModel(&localized, opts)
	translate := opts.Func()

	if title := strings.TrimSpace(localized.Title); title != "" {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+title); err != nil {
			return err
		}
	}
	for _, message := range c.FormErrors() {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	for _, field := range localized.Fields {
		binding, err := form.Bind(c, field)
		if err != nil {
			return err
		}
		if err := r.promptBinding(ctx, c, field, binding, translate); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptBinding(ctx context.Context, c *form.Container, field model.Field, b *form.Binding, translate i18n.Func) error {
	for _, message := range c.ServerErrors(field.Name) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	schema := c.Schema()

	validate := func(candidate string) error {
		if issue, failed := schema.ValidateField(field.Name, map[string]any{field.Name: candidate}); failed {
			return errors.New(issue.Message(translate))
		}
		return nil
	}

	for attempt := 1; ; attempt++ {
		value, err := r.ask(ctx, field, b, validate)
		if err != nil {
			return err
		}
		if err := b.OnChange(value); err != nil {
			return err
		}
		b.OnBlur()

		issue, invalid := b.Error()
		if !invalid {
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+issue.Message(translate)); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
		}
	}
}

func (r *Renderer) ask(ctx context.Context, field model.Field, b *form.Binding, validate func(string) error) (any, error) {
	message := r.theme.PromptPrefix + displayLabel(field)
	help := strings.TrimSpace(field.Description)

	switch b.Widget() {
	case model.WidgetCheckbox:
		return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: b.Checked(), Help: help})
	case model.WidgetPassword:
		return r.driver.Password(ctx, InputConfig{Message: message, Help: help, Validator: validate})
	case model.WidgetTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: b.Text(), Help: help, Validator: validate})
	default:
		return r.driver.Input(ctx, InputConfig{
			Message:     message,
			Default:     b.Text(),
			Help:        help,
			Placeholder: field.Placeholder,
			Validator:   validate,
		})
	}
}

// RenderReport prints a campaign application summary with file rows
// coloured by tone.
func (r *Renderer) RenderReport(ctx context.Context, report campaignapp.Report) error {
	if r.driver == nil {
		return ErrNoDriver
	}
	styles := lipgloss.NewRenderer(r.out)
	title := styles.NewStyle().Bold(true)
	label := styles.NewStyle().Bold(true)
	directive := styles.NewStyle().Italic(true)

	lines := []string{title.Render(report.Title)}
	for _, row := range report.Rows {
		switch row.Kind {
		case campaignapp.RowFiles:
			lines = append(lines, label.Render(row.Label))
			file := styles.NewStyle().PaddingLeft(2)
			if color := row.Tone.Color(); color != "" {
				file = file.Foreground(lipgloss.Color(color))
			}
			for _, name := range row.Files {
				lines = append(lines, file.Render(name))
			}
		case campaignapp.RowDirective:
			lines = append(lines, directive.Render(row.Value))
		default:
			lines = append(lines, label.Render(row.Label+":")+" "+row.Value)
		}
	}
	for _, line := range lines {
		if err := r.driver.Info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return sonic.ConfigStd.Marshal(values)
	}
}

// initialValues keeps the prefilled values whose type matches the schema.
func initialValues(schema *validation.Schema, prefill map[string]any) form.Values {
	out := make(form.Values, len(schema.Fields()))
	for _, name := range schema.Fields() {
		kind, _ := schema.Kind(name)
		value, ok := prefill[name]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case bool:
			if kind == model.FieldTypeBoolean {
				out[name] = v
			}
		case string:
			if kind == model.FieldTypeString {
				out[name] = v
			}
		}
	}
	return out
}

func displayLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.Name
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for _, key := range sortedKeys(values) {
		flattened.Set(key, fmt.Sprint(values[key]))
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	for _, key := range sortedKeys(values) {
		fmt.Fprintf(&b, "%s=%v\n", key, values[key])
	}
	return b.String()
}

package html

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/notify"
	"github.com/goliatone/go-donorform/pkg/page"
	"github.com/goliatone/go-donorform/pkg/render"
	rendertemplate "github.com/goliatone/go-donorform/pkg/render/template"
	gotemplate "github.com/goliatone/go-donorform/pkg/render/template/gotemplate"
)

// Template names. A theme may point any of them at another template through
// its Templates map.
const (
	TemplateForm    = "html.form"
	TemplateAlerts  = "html.alerts"
	TemplateSummary = "html.summary"
	TemplatePage    = "html.page"
)

var defaultTemplates = map[string]string{
	TemplateForm:    "form",
	TemplateAlerts:  "alerts",
	TemplateSummary: "summary",
	TemplatePage:    "page",
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	manifests        []*theme.Manifest
	defaultTheme     string
	defaultVariant   string
	selector         theme.ThemeSelector
	sanitizer        *bluemonday.Policy
	closeURL         string
	translator       render.Translator
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates the
// directory does not provide fall back to the bundled ones.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithThemes registers theme manifests selectable through
// RenderOptions.ThemeName.
func WithThemes(manifests ...*theme.Manifest) Option {
	return func(cfg *config) {
		cfg.manifests = append(cfg.manifests, manifests...)
	}
}

// WithDefaultTheme picks the theme and variant used when a request names none.
func WithDefaultTheme(name, variant string) Option {
	return func(cfg *config) {
		cfg.defaultTheme = name
		cfg.defaultVariant = variant
	}
}

// WithThemeSelector replaces the manifest based selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
	}
}

// WithSanitizer overrides the policy applied to free text shown in summaries.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.sanitizer = policy
		}
	}
}

// WithCloseURL renders a close link next to the submit button of modal forms.
func WithCloseURL(url string) Option {
	return func(cfg *config) {
		cfg.closeURL = strings.TrimSpace(url)
	}
}

// WithTranslator exposes translate(locale, key, ...args) and
// current_locale(locale) to the templates, for theme partials that need
// strings the renderer does not pass in. Ignored with WithTemplateRenderer.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// Renderer draws forms, summaries and pages as HTML.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	selector  theme.ThemeSelector
	sanitizer *bluemonday.Policy
	closeURL  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithBaseDir(cfg.templatesDir),
			gotemplate.WithExtension(".tpl"),
		}
		if cfg.translator != nil {
			engineOpts = append(engineOpts, gotemplate.WithTemplateFunc(
				render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{}),
			))
		}
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	selector := cfg.selector
	if selector == nil {
		manifests, err := newManifestSelector(cfg.manifests, cfg.defaultTheme, cfg.defaultVariant)
		if err != nil {
			return nil, err
		}
		selector = manifests
	}

	sanitizer := cfg.sanitizer
	if sanitizer == nil {
		sanitizer = bluemonday.UGCPolicy()
	}

	return &Renderer{
		templates: renderer,
		selector:  selector,
		sanitizer: sanitizer,
		closeURL:  cfg.closeURL,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws a form inside its modal shell. Password values are never
// echoed back.
func (r *Renderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	localized := form
	localized.Fields = append([]model.Field(nil), form.Fields...)
	if err := model.Apply(&localized, render.Localizer(opts)); err != nil {
		return nil, fmt.Errorf("html renderer: localize form: %w", err)
	}

	data, err := r.baseData(opts)
	if err != nil {
		return nil, err
	}
	translate := opts.Func()
	data["form"] = map[string]any{
		"id":       localized.ID,
		"title":    localized.Title,
		"endpoint": localized.Endpoint,
		"method":   formMethod(localized.Method),
	}
	data["fields"] = fieldViews(localized, opts)
	data["hidden"] = hiddenViews(opts.Hidden)
	data["formErrors"] = toAnySlice(opts.FormErrors)
	data["open"] = opts.Open
	data["pending"] = opts.Pending
	data["submitLabel"] = translate(submitLabel(localized), map[string]any{"default": "Submit"})
	data["closeURL"] = r.closeURL
	data["closeLabel"] = translate("common:actions.close", map[string]any{"default": "Close"})

	return r.execute(data, TemplateForm)
}

// RenderSummary draws a campaign application summary report. Detail values
// pass through the sanitizer policy.
func (r *Renderer) RenderSummary(_ context.Context, report campaignapp.Report, opts render.RenderOptions) ([]byte, error) {
	data, err := r.baseData(opts)
	if err != nil {
		return nil, err
	}
	rows := make([]any, 0, len(report.Rows))
	for _, row := range report.Rows {
		view := map[string]any{
			"kind":  string(row.Kind),
			"label": row.Label,
			"value": row.Value,
			"tone":  string(row.Tone),
			"color": row.Tone.Color(),
			"files": toAnySlice(row.Files),
		}
		if row.Kind == campaignapp.RowDetail {
			view["html"] = r.sanitizer.Sanitize(row.Value)
		}
		rows = append(rows, view)
	}
	data["report"] = map[string]any{"title": report.Title}
	data["rows"] = rows
	return r.execute(data, TemplateSummary)
}

// RenderPage draws a resolved page. sections holds pre-rendered HTML keyed by
// section id; sections without an entry render their title only.
func (r *Renderer) RenderPage(_ context.Context, p page.Page, opts render.RenderOptions, sections map[string][]byte) ([]byte, error) {
	data, err := r.baseData(opts)
	if err != nil {
		return nil, err
	}
	views := make([]any, 0, len(p.Sections))
	for _, section := range p.Sections {
		views = append(views, map[string]any{
			"id":    section.ID,
			"title": section.Title,
			"html":  string(sections[section.ID]),
		})
	}
	data["page"] = map[string]any{
		"id":              p.ID,
		"title":           p.Title,
		"metaDescription": p.MetaDescription,
		"fullWidth":       p.FullWidth,
		"disableOffset":   p.DisableOffset,
		"disableGutters":  p.DisableGutters,
	}
	data["sections"] = views
	return r.execute(data, TemplatePage)
}

// baseData resolves the theme and renders the alert stack shared by every
// template.
func (r *Renderer) baseData(opts render.RenderOptions) (map[string]any, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	selection, err := r.selector.Select(opts.ThemeName, opts.ThemeVariant)
	if err != nil {
		return nil, fmt.Errorf("html renderer: select theme: %w", err)
	}
	cfg := rendererConfig(selection)

	data := map[string]any{
		"locale":     opts.Locale,
		"theme":      themeContext(cfg),
		"alertsHTML": "",
		"partials":   partialNames(cfg),
	}
	if len(opts.Alerts) > 0 {
		alerts, err := r.templates.RenderTemplate(templateName(cfg, TemplateAlerts), map[string]any{
			"alerts": alertViews(opts.Alerts),
		})
		if err != nil {
			return nil, fmt.Errorf("html renderer: render alerts: %w", err)
		}
		data["alertsHTML"] = alerts
	}
	return data, nil
}

func (r *Renderer) execute(data map[string]any, name string) ([]byte, error) {
	partials, _ := data["partials"].(map[string]string)
	delete(data, "partials")
	tmpl := defaultTemplates[name]
	if override := strings.TrimSpace(partials[name]); override != "" {
		tmpl = override
	}
	result, err := r.templates.RenderTemplate(tmpl, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", tmpl, err)
	}
	return []byte(result), nil
}

func partialNames(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	return cfg.Partials
}

func templateName(cfg *theme.RendererConfig, name string) string {
	if cfg != nil {
		if override := strings.TrimSpace(cfg.Partials[name]); override != "" {
			return override
		}
	}
	return defaultTemplates[name]
}

func fieldViews(form model.FormModel, opts render.RenderOptions) []any {
	views := make([]any, 0, len(form.Fields))
	for _, field := range form.Fields {
		widget := field.Widget
		if widget == "" {
			widget = model.WidgetText
		}
		view := map[string]any{
			"id":           form.ID + "-" + field.Name,
			"name":         field.Name,
			"widget":       string(widget),
			"label":        field.Label,
			"placeholder":  field.Placeholder,
			"description":  field.Description,
			"autocomplete": field.AutoComplete,
			"required":     field.Required,
			"labelAlign":   labelAlign(field),
			"cssClass":     field.UIHints["cssClass"],
			"errors":       toAnySlice(opts.Errors[field.Name]),
		}
		value := opts.Values[field.Name]
		switch {
		case field.IsBoolean():
			checked, _ := value.(bool)
			view["checked"] = checked
		case widget == model.WidgetPassword:
			view["value"] = ""
		default:
			if value != nil {
				view["value"] = fmt.Sprint(value)
			} else {
				view["value"] = ""
			}
		}
		views = append(views, view)
	}
	return views
}

func labelAlign(field model.Field) string {
	if align := strings.TrimSpace(field.UIHints["labelAlign"]); align != "" {
		return align
	}
	return "start"
}

func hiddenViews(hidden map[string]string) []any {
	fields := render.SortedHiddenFields(hidden)
	out := make([]any, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func alertViews(alerts []notify.Alert) []any {
	out := make([]any, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, map[string]any{
			"id":      alert.ID,
			"level":   string(alert.Level),
			"message": alert.Message,
		})
	}
	return out
}

func submitLabel(form model.FormModel) string {
	if label := strings.TrimSpace(form.SubmitLabel); label != "" {
		return label
	}
	return "common:actions.submit"
}

func formMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return "post"
	}
	return method
}

func toAnySlice(values []string) []any {
	if len(values) == 0 {
		return nil
	}
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

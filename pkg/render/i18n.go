package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/model"
)

const (
	fieldPlaceholderKeyHint = "placeholderKey"
	fieldHelpTextKeyHint    = "helpTextKey"
)

// ErrMissingTranslator is reported to MissingTranslationHandler when options
// carry no Translator.
var ErrMissingTranslator = errors.New("render: translator is nil")

// Translator resolves a translation key for a locale. *i18n.Catalog
// satisfies it.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the string used when a key cannot be
// resolved. args may carry a map[string]any with a "default" entry.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if params, ok := arg.(map[string]any); ok {
			if fallback, ok := params["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// Func binds the options' translator and locale into an i18n.Func.
func (o RenderOptions) Func() i18n.Func {
	onMissing := o.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	return func(key string, args ...any) string {
		if o.Translator == nil {
			return onMissing(o.Locale, key, args, ErrMissingTranslator)
		}
		msg, err := o.Translator.Translate(o.Locale, key, args...)
		if err != nil || strings.TrimSpace(msg) == "" {
			return onMissing(o.Locale, key, args, err)
		}
		return msg
	}
}

// LocalizeFormModel resolves title, label, placeholder and help text keys in
// place. Literal values act as fallbacks when a key is missing.
func LocalizeFormModel(form *model.FormModel, opts RenderOptions) {
	if form == nil {
		return
	}
	translate := opts.Func()

	if key := strings.TrimSpace(form.TitleKey); key != "" {
		form.Title = withFallback(translate, key, form.Title)
	}
	for i := range form.Fields {
		localizeField(&form.Fields[i], translate)
	}
}

// Localizer wraps LocalizeFormModel as a model.Decorator.
func Localizer(opts RenderOptions) model.Decorator {
	return model.DecoratorFunc(func(form *model.FormModel) error {
		LocalizeFormModel(form, opts)
		return nil
	})
}

func localizeField(field *model.Field, translate i18n.Func) {
	if key := strings.TrimSpace(field.LabelKey); key != "" {
		field.Label = withFallback(translate, key, field.Label)
	}
	if key := strings.TrimSpace(field.UIHints[fieldPlaceholderKeyHint]); key != "" {
		field.Placeholder = withFallback(translate, key, field.Placeholder)
	}
	if key := strings.TrimSpace(field.UIHints[fieldHelpTextKeyHint]); key != "" {
		field.Description = withFallback(translate, key, field.Description)
	}
	for i := range field.Nested {
		localizeField(&field.Nested[i], translate)
	}
}

func withFallback(translate i18n.Func, key, fallback string) string {
	return translate(key, map[string]any{"default": strings.TrimSpace(fallback)})
}

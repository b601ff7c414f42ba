package render

import "github.com/goliatone/go-donorform/pkg/notify"

// RenderOptions describe per-request data renderers use to customise their
// output without mutating the form declaration.
type RenderOptions struct {
	// Locale selects the catalog used by Translator.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
	// Values pre-populates controls keyed by field name.
	Values map[string]any
	// Errors holds the messages shown under each field.
	Errors map[string][]string
	// FormErrors are messages not tied to a field.
	FormErrors []string
	// Hidden carries hidden inputs such as the CSRF token.
	Hidden map[string]string
	// Alerts are notifications raised while handling the request.
	Alerts []notify.Alert
	// Open controls whether modal shells render expanded.
	Open bool
	// Pending disables the submit control while a submission is in flight.
	Pending bool
	// ThemeName and ThemeVariant pick the theme for renderers that support one.
	ThemeName    string
	ThemeVariant string
}

package validation

import (
	"sort"
	"strings"

	"github.com/goliatone/go-donorform/pkg/i18n"
)

// Issue describes why a single field failed validation.
type Issue struct {
	Field string
	// Key is the translation key for the message.
	Key    string
	Params map[string]any
	// Default is the untranslated message produced by the failing rule.
	Default string
}

// Message renders the issue through translate. Missing translations fall
// back to the rule's default message.
func (i Issue) Message(translate i18n.Func) string {
	if translate == nil || i.Key == "" {
		return i.Default
	}
	var msg string
	if len(i.Params) > 0 {
		msg = translate(i.Key, i.Params)
	} else {
		msg = translate(i.Key)
	}
	if strings.TrimSpace(msg) == "" || msg == i.Key {
		return i.Default
	}
	return msg
}

// Errors maps field names to their validation issue.
type Errors map[string]Issue

// Error summarises the failing fields so Errors can travel as an error.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: ok"
	}
	parts := make([]string, 0, len(e))
	for _, name := range e.Fields() {
		parts = append(parts, name+": "+e[name].Default)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Has reports whether name failed.
func (e Errors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Fields returns the failing field names sorted.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Localize renders every issue into a message keyed by field name.
func (e Errors) Localize(translate i18n.Func) map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for name, issue := range e {
		out[name] = issue.Message(translate)
	}
	return out
}

package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-donorform/pkg/model"
)

// ErrorMapping splits a backend error payload into field-level and
// form-level messages keyed by dotted field paths.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Empty reports whether the mapping carries no message.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises backend error paths ("/body/firstName",
// "$.data.firstName", "firstName[0]") onto the form's field names. Unknown
// paths become form-level errors so messages are never lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	fieldPaths := make(map[string]struct{})
	collectFieldPaths(form.Fields, "", fieldPaths)

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		path, ok := mapErrorPath(rawPath, fieldPaths)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], normalized...)
	}

	for path, messages := range mapping.Fields {
		mapping.Fields[path] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, fieldPaths map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := parsePathSegments(raw)
	if len(segments) == 0 {
		return "", false
	}

	best := ""
	for _, variant := range [][]string{
		segments,
		dropWrapperSegments(segments),
		stripNumericSegments(dropWrapperSegments(segments)),
	} {
		if path := longestMatchingPath(variant, fieldPaths); len(path) > len(best) {
			best = path
		}
	}
	return best, best != ""
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, fieldPaths map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func collectFieldPaths(fields []model.Field, prefix string, dest map[string]struct{}) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		dest[path] = struct{}{}
		collectFieldPaths(field.Nested, path, dest)
	}
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

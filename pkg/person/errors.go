package person

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrNoRecord is returned when a successful response carries no person.
var ErrNoRecord = errors.New("person: response has no record")

// FormErrorKey collects messages not tied to a field in APIError.Payload.
const FormErrorKey = "form"

// APIError is a non-2xx response from the person API.
type APIError struct {
	Status  int
	Message string
	// Fields holds messages keyed by the property the API reported.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("person: api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("person: api status %d", e.Status)
}

// Payload flattens the error for render.MapErrorPayload.
func (e *APIError) Payload() map[string][]string {
	out := make(map[string][]string, len(e.Fields)+1)
	for field, messages := range e.Fields {
		out[field] = append([]string(nil), messages...)
	}
	if e.Message != "" && len(e.Fields) == 0 {
		out[FormErrorKey] = []string{e.Message}
	}
	return out
}

// parseAPIError decodes the validation payload the API returns. message may
// be a string, a list of strings or a list of
// {property, constraints, children} objects.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if len(strings.TrimSpace(string(body))) == 0 {
		return apiErr
	}

	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	var summary []string
	switch msg := payload.Message.(type) {
	case string:
		summary = append(summary, msg)
	case []any:
		for _, item := range msg {
			switch entry := item.(type) {
			case string:
				summary = append(summary, entry)
			case map[string]any:
				collectConstraints(entry, "", apiErr)
			}
		}
	}
	if len(summary) == 0 && payload.Error != "" && len(apiErr.Fields) == 0 {
		summary = append(summary, payload.Error)
	}
	apiErr.Message = strings.Join(summary, "; ")
	return apiErr
}

func collectConstraints(entry map[string]any, prefix string, apiErr *APIError) {
	property, _ := entry["property"].(string)
	if property == "" {
		property, _ = entry["field"].(string)
	}
	path := property
	if prefix != "" {
		path = prefix + "." + property
	}

	if constraints, ok := entry["constraints"].(map[string]any); ok {
		names := make([]string, 0, len(constraints))
		for name := range constraints {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if text, ok := constraints[name].(string); ok {
				apiErr.addField(path, text)
			}
		}
	}
	if text, ok := entry["message"].(string); ok {
		apiErr.addField(path, text)
	}
	if children, ok := entry["children"].([]any); ok {
		for _, child := range children {
			if nested, ok := child.(map[string]any); ok {
				collectConstraints(nested, path, apiErr)
			}
		}
	}
}

func (e *APIError) addField(path, message string) {
	message = strings.TrimSpace(message)
	if path == "" || message == "" {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[path] = append(e.Fields[path], message)
}

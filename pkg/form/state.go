package form

import (
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/render"
)

// VisibleErrors returns the messages to display per field: the visible
// validation issue followed by any server messages.
func (c *Container) VisibleErrors(translate i18n.Func) map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string][]string)
	for _, name := range c.schema.Fields() {
		var messages []string
		if issue, ok := c.errors[name]; ok && (c.touched[name] || c.submitted) {
			messages = append(messages, issue.Message(translate))
		}
		messages = append(messages, c.server[name]...)
		if len(messages) > 0 {
			out[name] = messages
		}
	}
	return out
}

// RenderState copies the container state into opts for a renderer. The
// password-like values are kept; renderers decide what to echo.
func (c *Container) RenderState(opts render.RenderOptions) render.RenderOptions {
	translate := opts.Func()
	values := c.Values()

	opts.Values = make(map[string]any, len(values))
	for name, value := range values {
		opts.Values[name] = value
	}
	opts.Errors = c.VisibleErrors(translate)
	opts.FormErrors = render.MergeFormErrors(opts.FormErrors, c.FormErrors()...)
	opts.Pending = c.Pending()
	return opts
}

package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers depend on. name is
// resolved by the engine; the configured extension may be omitted.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

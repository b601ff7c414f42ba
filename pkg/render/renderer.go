package render

import (
	"context"

	"github.com/goliatone/go-donorform/pkg/model"
)

// Renderer converts a form declaration plus per-request state into bytes
// (HTML, JSON collected from a terminal session, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}

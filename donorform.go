// Package donorform exposes the donation platform forms and a renderer
// registry wired with the HTML and terminal renderers.
package donorform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/page"
	"github.com/goliatone/go-donorform/pkg/profile"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/renderers/html"
	"github.com/goliatone/go-donorform/pkg/renderers/tui"
)

// ErrUnknownForm is returned by Render for ids Forms does not list.
var ErrUnknownForm = errors.New("donorform: unknown form")

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// FormModel aliases model.FormModel.
type FormModel = model.FormModel

// Forms returns the declared forms keyed by id.
func Forms() map[string]FormModel {
	subscription := page.SubscriptionForm()
	updateName := profile.UpdateNameForm()
	return map[string]FormModel{
		subscription.ID: subscription,
		updateName.ID:   updateName,
	}
}

// FormIDs lists the ids of Forms in order.
func FormIDs() []string {
	forms := Forms()
	ids := make([]string, 0, len(forms))
	for id := range forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// NewRegistry returns a registry holding the HTML and terminal renderers.
func NewRegistry(htmlOpts []html.Option, tuiOpts []tui.Option) (*render.Registry, error) {
	htmlRenderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, err
	}
	tuiRenderer, err := tui.New(tuiOpts...)
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}
	if err := registry.Register(tuiRenderer); err != nil {
		return nil, err
	}
	return registry, nil
}

// Render renders the form registered under formID with the named renderer.
func Render(ctx context.Context, registry *render.Registry, rendererName, formID string, opts RenderOptions) ([]byte, error) {
	form, ok := Forms()[formID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	renderer, err := registry.Get(rendererName)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form, opts)
}

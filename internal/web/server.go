// Package web serves the donation platform forms over HTTP: the index page
// with its subscription form, the name-update modal and the campaign
// application summary with file uploads.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/fileinput"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/notify"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/renderers/html"
)

const maxUploadBytes = 32 << 20

// People reads and updates the signed-in person.
type People interface {
	person.Updater
	CurrentPerson(ctx context.Context) (person.Person, error)
}

// Campaigns is the campaign application API used by the summary pages.
type Campaigns interface {
	Get(ctx context.Context, id string) (campaignapp.Application, error)
	UploadFiles(ctx context.Context, id string, files []fileinput.File) (campaignapp.FileResults, error)
	DeleteFiles(ctx context.Context, docs []campaignapp.Document) (campaignapp.FileResults, error)
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAlerts replaces the alert store.
func WithAlerts(store *notify.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.alerts = store
		}
	}
}

// WithTheme picks the theme requested from the renderer.
func WithTheme(name, variant string) Option {
	return func(s *Server) {
		s.themeName = strings.TrimSpace(name)
		s.themeVariant = strings.TrimSpace(variant)
	}
}

// WithLocale sets the locale used when a request names none.
func WithLocale(locale string) Option {
	return func(s *Server) {
		s.defaultLocale = strings.TrimSpace(locale)
	}
}

// WithAccept restricts uploaded files, using the HTML accept syntax.
func WithAccept(accept string) Option {
	return func(s *Server) {
		s.accept = fileinput.ParseAccept(accept)
	}
}

// Server holds the collaborators shared by the handlers.
type Server struct {
	catalog   *i18n.Catalog
	renderer  *html.Renderer
	verifier  auth.Verifier
	people    People
	campaigns Campaigns
	alerts    *notify.Store
	csrf      *csrfGuard
	logger    *slog.Logger

	themeName     string
	themeVariant  string
	defaultLocale string
	accept        []string
}

// New builds a Server. All collaborators are required.
func New(catalog *i18n.Catalog, renderer *html.Renderer, verifier auth.Verifier, people People, campaigns Campaigns, opts ...Option) (*Server, error) {
	switch {
	case catalog == nil:
		return nil, errors.New("web: catalog is required")
	case renderer == nil:
		return nil, errors.New("web: renderer is required")
	case verifier == nil:
		return nil, errors.New("web: verifier is required")
	case people == nil:
		return nil, errors.New("web: person client is required")
	case campaigns == nil:
		return nil, errors.New("web: campaign client is required")
	}

	s := &Server{
		catalog:   catalog,
		renderer:  renderer,
		verifier:  verifier,
		people:    people,
		campaigns: campaigns,
		alerts:    notify.NewStore(notify.WithLimit(20)),
		csrf:      newCSRFGuard(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Handler routes requests to the page handlers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /subscribe", s.csrf.protect(s.handleSubscribe))
	mux.HandleFunc("GET /account/name", s.handleNameForm)
	mux.HandleFunc("POST /account/name", s.csrf.protect(s.handleNameSubmit))
	mux.HandleFunc("GET /campaign-application/{id}/summary", s.handleSummary)
	mux.HandleFunc("POST /campaign-application/{id}/files", s.csrf.protect(s.handleFiles))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// locale picks the request locale: the lang query parameter first, then
// Accept-Language, then the server default.
func (s *Server) locale(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return s.catalog.Match(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return s.catalog.Match(accept)
	}
	return s.catalog.Match(s.defaultLocale)
}

func (s *Server) renderOptions(w http.ResponseWriter, r *http.Request) render.RenderOptions {
	return render.RenderOptions{
		Locale:       s.locale(r),
		Translator:   s.catalog,
		Hidden:       render.MergeHiddenFields(nil, render.CSRFToken(csrfField, s.csrf.token(w, r))),
		Alerts:       s.alerts.Drain(),
		ThemeName:    s.themeName,
		ThemeVariant: s.themeVariant,
	}
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, body []byte, err error) {
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("render: %w", err))
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.WarnContext(r.Context(), "write response", slog.Any("error", err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)
	http.Error(w, http.StatusText(status), status)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

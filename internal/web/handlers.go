package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/failure"
	"github.com/goliatone/go-donorform/pkg/fileinput"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/notify"
	"github.com/goliatone/go-donorform/pkg/page"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/profile"
	"github.com/goliatone/go-donorform/pkg/render"
	"github.com/goliatone/go-donorform/pkg/validation"
)

const (
	subscribeSuccessKey = "index:subscription.success"
	uploadFailedKey     = "common:alerts.error"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts := s.renderOptions(w, r)
	body, err := s.renderIndex(r.Context(), opts, nil)
	s.write(w, r, http.StatusOK, body, err)
}

// renderIndex renders the index page. subscription overrides the state of
// the subscription form after a failed submit.
func (s *Server) renderIndex(ctx context.Context, opts render.RenderOptions, subscription *form.Container) ([]byte, error) {
	p := page.Index().Resolve(s.catalog.Func(opts.Locale))

	sectionOpts := opts
	sectionOpts.Alerts = nil
	sectionOpts.Open = true

	sections := make(map[string][]byte)
	for _, section := range p.Sections {
		if section.Form == nil {
			continue
		}
		formOpts := sectionOpts
		if subscription != nil && section.ID == page.SectionSubscription {
			formOpts = subscription.RenderState(formOpts)
		}
		body, err := s.renderer.Render(ctx, *section.Form, formOpts)
		if err != nil {
			return nil, err
		}
		sections[section.ID] = body
	}
	return s.renderer.RenderPage(ctx, p, opts, sections)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	opts := s.renderOptions(w, r)
	translate := opts.Func()
	decl := page.SubscriptionForm()

	container, err := newContainer(decl, func(ctx context.Context, values form.Values) error {
		s.logger.InfoContext(ctx, "newsletter subscription", slog.String("email", values.String("email")))
		s.alerts.Notify(ctx, translate(subscribeSuccessKey), notify.LevelSuccess)
		return nil
	}, s.logger)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := applyForm(container, decl, r); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	if err := container.Submit(r.Context()); err != nil {
		var invalid *form.InvalidError
		if !errors.As(err, &invalid) {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		body, err := s.renderIndex(r.Context(), opts, container)
		s.write(w, r, http.StatusUnprocessableEntity, body, err)
		return
	}
	redirect(w, r, "/#"+page.SectionSubscription)
}

func (s *Server) handleNameForm(w http.ResponseWriter, r *http.Request) {
	current, err := s.people.CurrentPerson(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	opts := s.renderOptions(w, r)
	opts.Open = true
	opts.Values = map[string]any{}
	for name, value := range profile.InitialValues(current) {
		opts.Values[name] = value
	}
	body, err := s.renderer.Render(r.Context(), profile.UpdateNameForm(), opts)
	s.write(w, r, http.StatusOK, body, err)
}

func (s *Server) handleNameSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := s.people.CurrentPerson(ctx)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	opts := s.renderOptions(w, r)
	translate := opts.Func()

	flow := profile.NewFlow(s.verifier, s.people,
		profile.WithNotifier(s.alerts),
		profile.WithTranslator(translate),
		profile.WithLogger(s.logger),
	)
	handler := failure.NewHandler(
		failure.WithLogger(s.logger),
		failure.WithNotifier(s.alerts),
		failure.WithTranslator(translate),
	)
	modal, err := profile.NewModal(flow, current,
		profile.WithHandler(handler),
		profile.WithModalLogger(s.logger),
		profile.WithOnClose(func(ctx context.Context, record *person.Person) {
			if record != nil {
				s.logger.InfoContext(ctx, "name updated", slog.String("person", record.ID))
			}
		}),
	)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := modal.Open(); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := applyForm(modal.Form(), modal.Declaration(), r); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	container := modal.Form()
	if err := modal.Submit(ctx); err != nil {
		var invalid *form.InvalidError
		if !errors.As(err, &invalid) {
			s.fail(w, r, http.StatusConflict, err)
			return
		}
	}
	if !modal.IsOpen() {
		redirect(w, r, "/")
		return
	}

	// Still open: validation failed, or the update was rejected and the form
	// keeps the entered values.
	opts = container.RenderState(opts)
	opts.Open = true
	opts.Alerts = append(opts.Alerts, s.alerts.Drain()...)
	body, err := s.renderer.Render(ctx, modal.Declaration(), opts)
	s.write(w, r, http.StatusUnprocessableEntity, body, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	app, err := s.campaigns.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	opts := s.renderOptions(w, r)
	report := campaignapp.Summarize(campaignapp.SummaryInput{
		Application: &app,
		IsEdit:      r.URL.Query().Get("edit") == "1",
	}, opts.Func())
	body, err := s.renderer.RenderSummary(r.Context(), report, opts)
	s.write(w, r, http.StatusOK, body, err)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	app, err := s.campaigns.Get(ctx, id)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, err)
		return
	}
	opts := s.renderOptions(w, r)
	translate := opts.Func()

	var uploaded campaignapp.FileResults
	picker := fileinput.Picker{
		Accept:   s.accept,
		Multiple: true,
		OnUpload: func(ctx context.Context, files []fileinput.File) error {
			results, err := s.campaigns.UploadFiles(ctx, id, files)
			uploaded.Successful = append(uploaded.Successful, results.Successful...)
			uploaded.Failed = append(uploaded.Failed, results.Failed...)
			return err
		},
	}

	var selected []fileinput.File
	if r.MultipartForm != nil {
		selected = fileinput.FromMultipart(r.MultipartForm.File["file"])
	}
	_, rejected := picker.Filter(selected)
	for _, file := range rejected {
		uploaded.Failed = append(uploaded.Failed, file.Name)
	}

	deleteIDs := r.PostForm["delete"]
	if len(selected) == 0 && len(deleteIDs) == 0 {
		s.fail(w, r, http.StatusBadRequest, fileinput.ErrNoFiles)
		return
	}
	if len(selected) > 0 {
		if err := picker.Select(ctx, selected); err != nil && !errors.Is(err, fileinput.ErrNotAccepted) {
			s.logger.ErrorContext(ctx, "upload failed", slog.String("application", id), slog.Any("error", err))
			s.alerts.Notify(ctx, translate(uploadFailedKey), notify.LevelError)
		}
	}

	var deleted *campaignapp.FileResults
	if docs := documentsByID(app.Documents, deleteIDs); len(docs) > 0 {
		results, err := s.campaigns.DeleteFiles(ctx, docs)
		if err != nil {
			s.logger.ErrorContext(ctx, "delete failed", slog.String("application", id), slog.Any("error", err))
		}
		deleted = &results
	}

	if refreshed, err := s.campaigns.Get(ctx, id); err == nil {
		app = refreshed
	}
	report := campaignapp.Summarize(campaignapp.SummaryInput{
		Uploaded:    uploaded,
		Deleted:     deleted,
		Application: &app,
		IsEdit:      true,
	}, translate)
	opts.Alerts = append(opts.Alerts, s.alerts.Drain()...)
	body, err := s.renderer.RenderSummary(ctx, report, opts)
	s.write(w, r, http.StatusOK, body, err)
}

func documentsByID(docs []campaignapp.Document, ids []string) []campaignapp.Document {
	var out []campaignapp.Document
	for _, doc := range docs {
		if slices.Contains(ids, doc.ID) {
			out = append(out, doc)
		}
	}
	return out
}

func newContainer(decl model.FormModel, submit form.SubmitFunc, logger *slog.Logger) (*form.Container, error) {
	schema, err := validation.FromForm(decl)
	if err != nil {
		return nil, err
	}
	return form.New(nil, schema, submit, form.WithLogger(logger))
}

// applyForm copies posted values into the container through field bindings,
// touching each field. Unchecked checkboxes are absent from the payload and
// read as false.
func applyForm(c *form.Container, decl model.FormModel, r *http.Request) error {
	for _, field := range decl.Fields {
		binding, err := form.Bind(c, field)
		if err != nil {
			return err
		}
		var value any = strings.TrimSpace(r.PostFormValue(field.Name))
		if field.IsBoolean() {
			raw := r.PostFormValue(field.Name)
			value = raw == "true" || raw == "on"
		} else if field.Widget == model.WidgetPassword {
			value = r.PostFormValue(field.Name)
		}
		if err := binding.OnChange(value); err != nil {
			return err
		}
		binding.OnBlur()
	}
	return nil
}

package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-donorform/pkg/auth"
	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/fileinput"
	"github.com/goliatone/go-donorform/pkg/person"
	"github.com/goliatone/go-donorform/pkg/renderers/html"
	"github.com/goliatone/go-donorform/pkg/testsupport"
)

const (
	testToken    = "token-123"
	testPassword = "secret1"
)

type fakePeople struct {
	current   person.Person
	updateErr error
	updates   []person.UpdatePerson
}

func (f *fakePeople) CurrentPerson(context.Context) (person.Person, error) {
	return f.current, nil
}

func (f *fakePeople) UpdateCurrentPerson(_ context.Context, update person.UpdatePerson) (person.Person, error) {
	f.updates = append(f.updates, update)
	if f.updateErr != nil {
		return person.Person{}, f.updateErr
	}
	record := f.current
	record.FirstName = update.FirstName
	record.LastName = update.LastName
	return record, nil
}

type fakeCampaigns struct {
	app      campaignapp.Application
	uploaded []string
	deleted  []string
}

func (f *fakeCampaigns) Get(_ context.Context, id string) (campaignapp.Application, error) {
	app := f.app
	app.ID = id
	return app, nil
}

func (f *fakeCampaigns) UploadFiles(_ context.Context, _ string, files []fileinput.File) (campaignapp.FileResults, error) {
	var results campaignapp.FileResults
	for _, file := range files {
		f.uploaded = append(f.uploaded, file.Name)
		results.Successful = append(results.Successful, file.Name)
	}
	return results, nil
}

func (f *fakeCampaigns) DeleteFiles(_ context.Context, docs []campaignapp.Document) (campaignapp.FileResults, error) {
	var results campaignapp.FileResults
	for _, doc := range docs {
		f.deleted = append(f.deleted, doc.ID)
		results.Successful = append(results.Successful, doc.Filename)
	}
	return results, nil
}

type fixture struct {
	handler   http.Handler
	people    *fakePeople
	campaigns *fakeCampaigns
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	verifier := auth.VerifierFunc(func(_ context.Context, creds auth.Credentials) (*auth.Session, error) {
		if creds.Password != testPassword {
			return nil, auth.ErrInvalidCredentials
		}
		return &auth.Session{}, nil
	})
	people := &fakePeople{current: person.Person{
		ID:        "p-1",
		FirstName: "Anna",
		LastName:  "Ivanova",
		Email:     "anna@example.com",
	}}
	campaigns := &fakeCampaigns{app: campaignapp.Application{
		OrganizerName: "Anna Ivanova",
		CampaignName:  "<b>Clean</b> river",
		Documents:     []campaignapp.Document{{ID: "doc-1", Filename: "old.pdf"}},
	}}

	srv, err := New(testsupport.Catalog(t), renderer, verifier, people, campaigns)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return &fixture{handler: srv.Handler(), people: people, campaigns: campaigns}
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept-Language", "en")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testToken})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	values.Set(csrfField, testToken)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept-Language", "en")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testToken})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d\n%s", rec.Code, want, rec.Body.String())
	}
}

func assertBody(t *testing.T, rec *httptest.ResponseRecorder, fragments ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, fragment := range fragments {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected body to contain %q\n%s", fragment, body)
		}
	}
}

func TestIndex_IssuesCSRFCookie(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assertStatus(t, rec, http.StatusOK)
	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == csrfCookie {
			token = cookie.Value
		}
	}
	if token == "" {
		t.Fatalf("expected %s cookie to be set", csrfCookie)
	}
	assertBody(t, rec,
		`<html lang="en">`,
		"Donation platform",
		`action="/subscribe"`,
		`name="_csrf" value="`+token+`"`,
	)
}

func TestIndex_ReusesCookieToken(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/")

	assertStatus(t, rec, http.StatusOK)
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no new cookie, got %v", cookies)
	}
	assertBody(t, rec, `value="`+testToken+`"`)
}

func TestPost_RejectsMissingToken(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"email": {"donor@example.com"}, "consent": {"true"}, csrfField: {"forged"}}
	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testToken})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusForbidden)

	req = httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assertStatus(t, rec, http.StatusForbidden)
}

func TestSubscribe_InvalidRerendersWithErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/subscribe", url.Values{"email": {"not-an-email"}})

	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assertBody(t, rec,
		`value="not-an-email"`,
		"Please enter a valid email.",
		"This field is required.",
	)
}

func TestSubscribe_SuccessRedirectsWithAlert(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/subscribe", url.Values{"email": {"donor@example.com"}, "consent": {"on"}})
	assertStatus(t, rec, http.StatusSeeOther)
	if diff := cmp.Diff("/#subscription", rec.Header().Get("Location")); diff != "" {
		t.Fatalf("location mismatch (-want +got):\n%s", diff)
	}

	index := f.get(t, "/")
	assertBody(t, index, "Thank you for subscribing!")

	again := f.get(t, "/")
	if strings.Contains(again.Body.String(), "Thank you for subscribing!") {
		t.Fatalf("expected the alert to be shown once")
	}
}

func TestNameForm_PrefillsCurrentPerson(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/account/name")

	assertStatus(t, rec, http.StatusOK)
	assertBody(t, rec, "df-modal--open", `value="Anna"`, `value="Ivanova"`, "Update name")
}

func TestNameSubmit_UpdatesAndCloses(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/account/name", url.Values{
		"firstName": {" Ana "},
		"lastName":  {"Petrova"},
		"password":  {testPassword},
	})
	assertStatus(t, rec, http.StatusSeeOther)

	want := []person.UpdatePerson{{FirstName: "Ana", LastName: "Petrova", Email: "anna@example.com"}}
	if diff := cmp.Diff(want, f.people.updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
	assertBody(t, f.get(t, "/"), "Success!")
}

func TestNameSubmit_WrongPasswordClosesWithAlert(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/account/name", url.Values{
		"firstName": {"Ana"},
		"lastName":  {"Petrova"},
		"password":  {"wrong-password"},
	})
	assertStatus(t, rec, http.StatusSeeOther)
	if len(f.people.updates) != 0 {
		t.Fatalf("expected no update after a failed verify, got %v", f.people.updates)
	}
	assertBody(t, f.get(t, "/"), "Invalid login.")
}

func TestNameSubmit_InvalidKeepsModalOpen(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/account/name", url.Values{
		"firstName": {""},
		"lastName":  {"Petrova"},
		"password":  {testPassword},
	})

	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assertBody(t, rec, "df-modal--open", "This field is required.", `value="Petrova"`)
	if strings.Contains(rec.Body.String(), testPassword) {
		t.Fatalf("password must not be echoed back")
	}
	if len(f.people.updates) != 0 {
		t.Fatalf("expected no update, got %v", f.people.updates)
	}
}

func TestNameSubmit_RejectedUpdateShowsServerErrors(t *testing.T) {
	f := newFixture(t)
	f.people.updateErr = &person.APIError{
		Status: http.StatusBadRequest,
		Fields: map[string][]string{"lastName": {"Last name is not allowed."}},
	}

	rec := f.post(t, "/account/name", url.Values{
		"firstName": {"Ana"},
		"lastName":  {"Petrova"},
		"password":  {testPassword},
	})

	assertStatus(t, rec, http.StatusUnprocessableEntity)
	assertBody(t, rec,
		"df-modal--open",
		"Last name is not allowed.",
		"An error occurred. Please try again.",
	)
}

func TestSummary_RendersApplication(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/campaign-application/app-1/summary")

	assertStatus(t, rec, http.StatusOK)
	assertBody(t, rec, "Your application was created.", "Anna Ivanova", "<b>Clean</b> river")
}

func TestFiles_UploadsAndDeletes(t *testing.T) {
	f := newFixture(t)

	var payload bytes.Buffer
	mw := multipart.NewWriter(&payload)
	part, err := mw.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for name, value := range map[string]string{"delete": "doc-1", csrfField: testToken} {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/campaign-application/app-1/files", &payload)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept-Language", "en")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testToken})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assertStatus(t, rec, http.StatusOK)
	if diff := cmp.Diff([]string{"report.pdf"}, f.campaigns.uploaded); diff != "" {
		t.Fatalf("uploaded mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"doc-1"}, f.campaigns.deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
	assertBody(t, rec, "Your application was updated.", "Uploaded files", "report.pdf", "Deleted files", "old.pdf")
}

func TestFiles_EmptySelectionIsBadRequest(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/campaign-application/app-1/files", url.Values{})

	assertStatus(t, rec, http.StatusBadRequest)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(nil, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for missing collaborators")
	}
}

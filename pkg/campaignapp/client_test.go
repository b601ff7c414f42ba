package campaignapp_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/fileinput"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaign-application/byId/app-1" || r.Header.Get("Authorization") != "Bearer tkn" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"id":"app-1","organizerName":"Иван","campaignEnd":"date","campaignEndDate":"2025-03-09T00:00:00.000Z"}`)
	}))
	t.Cleanup(srv.Close)

	app, err := campaignapp.NewClient(srv.URL, staticToken("tkn")).Get(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if app.OrganizerName != "Иван" || app.CampaignEnd != campaignapp.CampaignEndDate || app.CampaignEndDate == nil {
		t.Fatalf("unexpected application %+v", app)
	}
}

func TestClient_UploadFilesSplitsOutcomes(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/campaign-application/uploadFile/app-1") {
			http.NotFound(w, r)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if strings.HasPrefix(header.Filename, "bad") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	files := []fileinput.File{
		fileinput.FromBytes("a.png", "", []byte("a")),
		fileinput.FromBytes("bad.png", "", []byte("b")),
		fileinput.FromBytes("c.pdf", "", []byte("c")),
		fileinput.FromBytes("d.pdf", "", []byte("d")),
	}
	client := campaignapp.NewClient(srv.URL, staticToken("tkn"), campaignapp.WithParallelism(2))
	got, err := client.UploadFiles(context.Background(), "app-1", files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	want := campaignapp.FileResults{Successful: []string{"a.png", "c.pdf", "d.pdf"}, Failed: []string{"bad.png"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent uploads, saw %d", peak.Load())
	}
}

func TestClient_DeleteFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/doc-2") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	got, err := campaignapp.NewClient(srv.URL, staticToken("tkn")).DeleteFiles(context.Background(), []campaignapp.Document{
		{ID: "doc-1", Filename: "one.pdf"},
		{ID: "doc-2", Filename: "two.pdf"},
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := campaignapp.FileResults{Successful: []string{"one.pdf"}, Failed: []string{"two.pdf"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_UploadCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := campaignapp.NewClient(srv.URL, staticToken("tkn")).UploadFiles(ctx, "app-1", []fileinput.File{
		fileinput.FromBytes("a.png", "", []byte("a")),
	})
	if err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

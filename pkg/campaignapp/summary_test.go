package campaignapp_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-donorform/pkg/campaignapp"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/testsupport"
)

func fileRows(r campaignapp.Report) []campaignapp.Row {
	var out []campaignapp.Row
	for _, row := range r.Rows {
		if row.Kind == campaignapp.RowFiles {
			out = append(out, row)
		}
	}
	return out
}

func TestSummarize_UploadOkWithoutDirective(t *testing.T) {
	report := campaignapp.Summarize(campaignapp.SummaryInput{
		Uploaded: campaignapp.FileResults{Successful: []string{"a.png"}, Failed: []string{}},
	}, i18n.Identity)

	want := []campaignapp.Row{{
		Kind:  campaignapp.RowFiles,
		Label: "campaign-application:result.uploadOk",
		Files: []string{"a.png"},
		Tone:  campaignapp.ToneSuccess,
	}}
	if diff := cmp.Diff(want, fileRows(report)); diff != "" {
		t.Fatalf("file rows mismatch (-want +got):\n%s", diff)
	}
	if got := report.Directives(); len(got) != 0 {
		t.Fatalf("expected no directive, got %+v", got)
	}
	if report.Title != "campaign-application:result.created" {
		t.Fatalf("unexpected title %q", report.Title)
	}
}

func TestSummarize_UploadFailureAddsOneDirective(t *testing.T) {
	report := campaignapp.Summarize(campaignapp.SummaryInput{
		Uploaded: campaignapp.FileResults{Successful: []string{"a.png"}, Failed: []string{"b.png"}},
		IsEdit:   true,
	}, testsupport.Translate(t, "en"))

	want := []campaignapp.Row{
		{Kind: campaignapp.RowFiles, Label: "Uploaded files", Files: []string{"a.png"}, Tone: campaignapp.ToneSuccess},
		{Kind: campaignapp.RowFiles, Label: "Files that failed to upload", Files: []string{"b.png"}, Tone: campaignapp.ToneFailure},
	}
	if diff := cmp.Diff(want, fileRows(report)); diff != "" {
		t.Fatalf("file rows mismatch (-want +got):\n%s", diff)
	}
	directives := report.Directives()
	if len(directives) != 1 || directives[0].Value != "Please try again by editing the application." {
		t.Fatalf("expected exactly one directive, got %+v", directives)
	}
	if report.Title != "Your application was updated." {
		t.Fatalf("unexpected title %q", report.Title)
	}
}

func TestSummarize_DeletionRows(t *testing.T) {
	report := campaignapp.Summarize(campaignapp.SummaryInput{
		Uploaded: campaignapp.FileResults{Failed: []string{"up.pdf"}},
		Deleted:  &campaignapp.FileResults{Successful: []string{"old.pdf"}, Failed: []string{"stuck.pdf"}},
	}, i18n.Identity)

	var got []string
	for _, row := range report.Rows {
		if row.Kind == campaignapp.RowDetail {
			break
		}
		got = append(got, string(row.Kind)+":"+row.Label+row.Value)
	}
	want := []string{
		"files:campaign-application:result.deleteOk",
		"files:campaign-application:result.uploadFailed",
		"directive:campaign-application:result.uploadFailedDirection",
		"files:campaign-application:result.deleteFailed",
		"directive:campaign-application:result.uploadFailedDirection",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if report.Rows[0].Tone != campaignapp.ToneSuccessfulDelete {
		t.Fatalf("expected successful-delete tone, got %q", report.Rows[0].Tone)
	}
}

func TestSummarize_DetailsAndCampaignEnd(t *testing.T) {
	end := time.Date(2025, 3, 9, 22, 30, 0, 0, time.UTC)
	app := &campaignapp.Application{
		OrganizerName:   "Иван",
		OrganizerPhone:  "  ",
		CampaignEnd:     campaignapp.CampaignEndDate,
		CampaignEndDate: &end,
		Description:     "x",
	}
	prepend := campaignapp.Detail("Номер", campaignapp.Some("42"))

	report := campaignapp.Summarize(campaignapp.SummaryInput{
		Application: app,
		Prepend:     []campaignapp.Row{prepend},
	}, i18n.Identity)

	if diff := cmp.Diff(prepend, report.Rows[0]); diff != "" {
		t.Fatalf("prepended row mismatch (-want +got):\n%s", diff)
	}

	values := map[string]string{}
	for _, row := range report.Rows[1:] {
		values[row.Label] = row.Value
	}
	want := map[string]string{
		"campaign-application:steps.organizer.name":                      "Иван",
		"campaign-application:steps.organizer.phone":                     "-",
		"campaign-application:steps.organizer.email":                     "-",
		"campaign-application:steps.application.beneficiary":             "-",
		"campaign-application:steps.application.beneficiaryRelationship": "-",
		"campaign-application:steps.application.campaignTitle":           "-",
		"campaign-application:steps.application.funds":                   "-",
		"campaign-application:steps.application.campaign-end.title":      "2025-03-09",
		"campaign-application:steps.details.cause":                       "-",
		"campaign-application:steps.details.description":                 "x",
		"campaign-application:steps.details.current-status.label":        "-",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}
	if len(report.Rows) != 12 {
		t.Fatalf("expected 1 prepended + 11 detail rows, got %d", len(report.Rows))
	}
}

func TestSummarize_CampaignEndOptions(t *testing.T) {
	translate := testsupport.Translate(t, "en")
	cases := map[campaignapp.CampaignEnd]string{
		campaignapp.CampaignEndFunds:   "When the required amount is collected",
		campaignapp.CampaignEndOngoing: "Ongoing",
		campaignapp.CampaignEndDate:    "-",
	}
	for end, want := range cases {
		report := campaignapp.Summarize(campaignapp.SummaryInput{
			Application: &campaignapp.Application{CampaignEnd: end},
		}, translate)
		var got string
		for _, row := range report.Rows {
			if row.Label == "Campaign end" {
				got = row.Value
			}
		}
		if got != want {
			t.Fatalf("campaign end %q: want %q, got %q", end, want, got)
		}
	}
}

func TestDetail_BlankValues(t *testing.T) {
	cases := []struct {
		name  string
		value campaignapp.Value
		want  string
	}{
		{"whitespace", campaignapp.Some("  "), "-"},
		{"present", campaignapp.Some("x"), "x"},
		{"absent", campaignapp.None(), "-"},
		{"nil pointer", campaignapp.Optional(nil), "-"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := campaignapp.Detail("label", tc.value)
			if row.Value != tc.want {
				t.Fatalf("want %q, got %q", tc.want, row.Value)
			}
		})
	}
}

func TestTone_Color(t *testing.T) {
	if campaignapp.ToneNone.Color() != "" || campaignapp.ToneFailure.Color() == "" {
		t.Fatalf("unexpected tone colours")
	}
}

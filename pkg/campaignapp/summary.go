package campaignapp

import (
	"time"

	"github.com/goliatone/go-donorform/pkg/i18n"
)

// Tone colours a file row.
type Tone string

const (
	ToneNone             Tone = ""
	ToneSuccess          Tone = "success"
	ToneFailure          Tone = "failure"
	ToneSuccessfulDelete Tone = "successful-delete"
)

// Color returns the hex colour used for the tone, or "" for ToneNone.
func (t Tone) Color() string {
	switch t {
	case ToneSuccess:
		return "#81c784"
	case ToneFailure:
		return "#ff5252"
	case ToneSuccessfulDelete:
		return "#ffe0b2"
	}
	return ""
}

// RowKind identifies how a row renders.
type RowKind string

const (
	// RowFiles lists file names under a label.
	RowFiles RowKind = "files"
	// RowDirective is a standalone instruction line.
	RowDirective RowKind = "directive"
	// RowDetail is a label and a single value.
	RowDetail RowKind = "detail"
)

// Row is one line of the summary report.
type Row struct {
	Kind  RowKind  `json:"kind"`
	Label string   `json:"label,omitempty"`
	Value string   `json:"value,omitempty"`
	Files []string `json:"files,omitempty"`
	Tone  Tone     `json:"tone,omitempty"`
}

// Report is the projected summary.
type Report struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Directives returns the directive rows.
func (r Report) Directives() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Kind == RowDirective {
			out = append(out, row)
		}
	}
	return out
}

// SummaryInput is everything the summary shows.
type SummaryInput struct {
	Uploaded FileResults
	// Deleted is nil when the screen did not delete files.
	Deleted     *FileResults
	Application *Application
	IsEdit      bool
	// Prepend rows are placed before the file rows.
	Prepend []Row
}

// Detail builds a detail row, rendering blank values as Placeholder.
func Detail(label string, value Value) Row {
	return Row{Kind: RowDetail, Label: label, Value: value.Display()}
}

// Files builds a file row, or reports false when files is empty.
func Files(label string, files []string, tone Tone) (Row, bool) {
	if len(files) == 0 {
		return Row{}, false
	}
	return Row{Kind: RowFiles, Label: label, Files: append([]string(nil), files...), Tone: tone}, true
}

// Summarize projects in into a report. It performs no I/O.
func Summarize(in SummaryInput, t i18n.Func) Report {
	if t == nil {
		t = i18n.Identity
	}
	key := func(k string) string { return t(Namespace + ":" + k) }

	title := key("result.created")
	if in.IsEdit {
		title = key("result.edited")
	}
	report := Report{Title: title}
	report.Rows = append(report.Rows, in.Prepend...)

	appendFiles := func(label string, files []string, tone Tone) {
		if row, ok := Files(label, files, tone); ok {
			report.Rows = append(report.Rows, row)
		}
	}

	appendFiles(key("result.uploadOk"), in.Uploaded.Successful, ToneSuccess)
	if in.Deleted != nil {
		appendFiles(key("result.deleteOk"), in.Deleted.Successful, ToneSuccessfulDelete)
	}
	if in.Uploaded.HasFailures() {
		appendFiles(key("result.uploadFailed"), in.Uploaded.Failed, ToneFailure)
		report.Rows = append(report.Rows, Row{Kind: RowDirective, Value: key("result.uploadFailedDirection")})
	}
	if in.Deleted != nil && in.Deleted.HasFailures() {
		appendFiles(key("result.deleteFailed"), in.Deleted.Failed, ToneFailure)
		report.Rows = append(report.Rows, Row{Kind: RowDirective, Value: key("result.uploadFailedDirection")})
	}

	app := in.Application
	field := func(get func(*Application) string) Value {
		if app == nil {
			return None()
		}
		return Some(get(app))
	}

	report.Rows = append(report.Rows,
		Detail(key("steps.organizer.name"), field(func(a *Application) string { return a.OrganizerName })),
		Detail(key("steps.organizer.phone"), field(func(a *Application) string { return a.OrganizerPhone })),
		Detail(key("steps.organizer.email"), field(func(a *Application) string { return a.OrganizerEmail })),
		Detail(key("steps.application.beneficiary"), field(func(a *Application) string { return a.Beneficiary })),
		Detail(key("steps.application.beneficiaryRelationship"), field(func(a *Application) string { return a.OrganizerBeneficiaryRel })),
		Detail(key("steps.application.campaignTitle"), field(func(a *Application) string { return a.CampaignName })),
		Detail(key("steps.application.funds"), field(func(a *Application) string { return a.Amount })),
		Detail(key("steps.application.campaign-end.title"), campaignEnd(app, key)),
		Detail(key("steps.details.cause"), field(func(a *Application) string { return a.Goal })),
		Detail(key("steps.details.description"), field(func(a *Application) string { return a.Description })),
		Detail(key("steps.details.current-status.label"), field(func(a *Application) string { return a.History })),
	)
	return report
}

func campaignEnd(app *Application, key func(string) string) Value {
	if app == nil {
		return None()
	}
	switch app.CampaignEnd {
	case CampaignEndFunds:
		return Some(key("steps.application.campaign-end.options.funds"))
	case CampaignEndOngoing:
		return Some(key("steps.application.campaign-end.options.ongoing"))
	}
	if app.CampaignEndDate == nil {
		return None()
	}
	return Some(app.CampaignEndDate.UTC().Format(time.DateOnly))
}

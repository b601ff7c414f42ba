// Package page composes top-level pages from section declarations. Pages own
// no business logic; they order sections and resolve their titles.
package page

import (
	"github.com/goliatone/go-donorform/pkg/fields"
	"github.com/goliatone/go-donorform/pkg/i18n"
	"github.com/goliatone/go-donorform/pkg/model"
)

// Section ids of the index page, in render order.
const (
	SectionActiveCampaigns    = "active-campaigns"
	SectionCompletedCampaigns = "completed-campaigns"
	SectionPlatformStatistics = "platform-statistics"
	SectionMedia              = "media"
	SectionHowWeWork          = "how-we-work"
	SectionPartners           = "partners"
	SectionTeamMembers        = "team-members"
	SectionJoin               = "join"
	SectionSubscription       = "subscription"
	SectionFAQ                = "faq"
)

// Section is one block of a page.
type Section struct {
	ID       string
	TitleKey string
	// Form is set for sections that embed a form.
	Form *model.FormModel
}

// Layout describes a page shell and its sections.
type Layout struct {
	ID                 string
	TitleKey           string
	MetaDescriptionKey string
	// FullWidth drops the max-width container.
	FullWidth bool
	// DisableOffset removes the top offset reserved for the app bar.
	DisableOffset bool
	// DisableGutters removes horizontal padding.
	DisableGutters bool
	Sections       []Section
}

// Index returns the landing page.
func Index() Layout {
	ids := []string{
		SectionActiveCampaigns,
		SectionCompletedCampaigns,
		SectionPlatformStatistics,
		SectionMedia,
		SectionHowWeWork,
		SectionPartners,
		SectionTeamMembers,
		SectionJoin,
		SectionSubscription,
		SectionFAQ,
	}
	sections := make([]Section, 0, len(ids))
	for _, id := range ids {
		section := Section{ID: id, TitleKey: "index:sections." + id}
		if id == SectionSubscription {
			form := SubscriptionForm()
			section.Form = &form
		}
		sections = append(sections, section)
	}
	return Layout{
		ID:                 "index",
		TitleKey:           "index:title",
		MetaDescriptionKey: "index:metaDescription",
		FullWidth:          true,
		DisableOffset:      true,
		DisableGutters:     true,
		Sections:           sections,
	}
}

// SubscriptionForm declares the newsletter form of the subscription
// section.
func SubscriptionForm() model.FormModel {
	consent := fields.AcceptNewsletter("consent")
	consent.Required = true
	return model.FormModel{
		ID:          "subscription",
		Endpoint:    "/subscribe",
		Method:      "POST",
		TitleKey:    "index:sections.subscription",
		SubmitLabel: "common:actions.submit",
		Fields:      []model.Field{fields.Email("email"), consent},
	}
}

// ResolvedSection is a section with its title translated.
type ResolvedSection struct {
	ID    string
	Title string
	Form  *model.FormModel
}

// Page is a Layout resolved for one locale.
type Page struct {
	ID              string
	Title           string
	MetaDescription string
	FullWidth       bool
	DisableOffset   bool
	DisableGutters  bool
	Sections        []ResolvedSection
}

// Resolve translates the layout's keys.
func (l Layout) Resolve(t i18n.Func) Page {
	if t == nil {
		t = i18n.Identity
	}
	p := Page{
		ID:              l.ID,
		Title:           t(l.TitleKey),
		MetaDescription: t(l.MetaDescriptionKey),
		FullWidth:       l.FullWidth,
		DisableOffset:   l.DisableOffset,
		DisableGutters:  l.DisableGutters,
		Sections:        make([]ResolvedSection, 0, len(l.Sections)),
	}
	for _, s := range l.Sections {
		p.Sections = append(p.Sections, ResolvedSection{ID: s.ID, Title: t(s.TitleKey), Form: s.Form})
	}
	return p
}

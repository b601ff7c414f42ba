package campaignapp

import (
	"time"
)

// Namespace is the catalog namespace of the summary keys.
const Namespace = "campaign-application"

// CampaignEnd says how a campaign ends.
type CampaignEnd string

const (
	CampaignEndFunds   CampaignEnd = "funds"
	CampaignEndOngoing CampaignEnd = "ongoing"
	CampaignEndDate    CampaignEnd = "date"
)

// FileResults splits file operations by outcome.
type FileResults struct {
	Successful []string `json:"successful"`
	Failed     []string `json:"failed"`
}

// HasFailures reports whether any operation failed.
func (r FileResults) HasFailures() bool {
	return len(r.Failed) > 0
}

// Application is the campaign application record.
type Application struct {
	ID                      string      `json:"id"`
	OrganizerName           string      `json:"organizerName"`
	OrganizerPhone          string      `json:"organizerPhone"`
	OrganizerEmail          string      `json:"organizerEmail"`
	Beneficiary             string      `json:"beneficiary"`
	OrganizerBeneficiaryRel string      `json:"organizerBeneficiaryRel"`
	CampaignName            string      `json:"campaignName"`
	Amount                  string      `json:"amount"`
	CampaignEnd             CampaignEnd `json:"campaignEnd"`
	CampaignEndDate         *time.Time  `json:"campaignEndDate,omitempty"`
	Goal                    string      `json:"goal"`
	Description             string      `json:"description"`
	History                 string      `json:"history"`
	Documents               []Document  `json:"documents,omitempty"`
}

// Document is a file attached to an application.
type Document struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype,omitempty"`
}

package fields_test

import (
	"testing"

	"github.com/goliatone/go-donorform/pkg/fields"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/validation"
)

func TestPresets_ValidateThroughSchema(t *testing.T) {
	schema, err := validation.FromForm(model.FormModel{
		ID: "presets",
		Fields: []model.Field{
			fields.Name("firstName", "auth:fields.first-name"),
			fields.Password(),
			fields.Email("email"),
			fields.AcceptNewsletter("newsletter"),
		},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	cases := []struct {
		name    string
		values  map[string]any
		failing []string
	}{
		{
			name:   "valid",
			values: map[string]any{"firstName": " Мария ", "password": "secret1", "email": "m@example.com", "newsletter": false},
		},
		{
			name:    "short name and password",
			values:  map[string]any{"firstName": "M", "password": "12345", "email": "m@example.com"},
			failing: []string{"firstName", "password"},
		},
		{
			name:    "digits in name",
			values:  map[string]any{"firstName": "R2D2", "password": "secret1", "email": "m@example.com"},
			failing: []string{"firstName"},
		},
		{
			name:    "missing email",
			values:  map[string]any{"firstName": "Ana-Maria", "password": "secret1"},
			failing: []string{"email"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := schema.Validate(tc.values)
			got := errs.Fields()
			if len(got) != len(tc.failing) {
				t.Fatalf("expected failing %v, got %v", tc.failing, got)
			}
			for i := range got {
				if got[i] != tc.failing[i] {
					t.Fatalf("expected failing %v, got %v", tc.failing, got)
				}
			}
		})
	}
}

func TestAcceptNewsletterCampaign_UsesCampaignLabel(t *testing.T) {
	base := fields.AcceptNewsletter("consent")
	campaign := fields.AcceptNewsletterCampaign("consent")

	if base.LabelKey == campaign.LabelKey {
		t.Fatalf("expected distinct label keys")
	}
	if !campaign.IsBoolean() || campaign.Required {
		t.Fatalf("expected optional checkbox, got %+v", campaign)
	}
	if _, ok := base.UIHints["cssClass"]; ok {
		t.Fatalf("campaign hint leaked into base field")
	}
}

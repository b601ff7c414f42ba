// Package fields holds the reusable field declarations shared by the
// platform's forms: person names, passwords, emails and the newsletter
// consent checkboxes.
package fields

import (
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/validation"
)

const (
	// NamePattern accepts letters with inner spaces, dots, apostrophes and dashes.
	NamePattern = `^\p{L}[\p{L}\s'.-]*$`
	// NameMinLength and NameMaxLength bound person names.
	NameMinLength = 2
	NameMaxLength = 50
	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength = 6
)

// Name declares a required, trimmed person-name field.
func Name(name, labelKey string) model.Field {
	return model.Field{
		Name:         name,
		Type:         model.FieldTypeString,
		Widget:       model.WidgetText,
		Required:     true,
		Trim:         true,
		LabelKey:     labelKey,
		AutoComplete: name,
		Validations: []model.ValidationRule{
			validation.MinLength(NameMinLength),
			validation.MaxLength(NameMaxLength),
			validation.Pattern(NamePattern),
		},
	}
}

// Password declares the required password field used to confirm account
// changes.
func Password() model.Field {
	return model.Field{
		Name:         "password",
		Type:         model.FieldTypeString,
		Widget:       model.WidgetPassword,
		Required:     true,
		LabelKey:     "auth:fields.password",
		AutoComplete: "current-password",
		Validations: []model.ValidationRule{
			validation.WithMessage(validation.MinLength(PasswordMinLength), validation.KeyPasswordMin),
		},
	}
}

// Email declares a required email field.
func Email(name string) model.Field {
	return model.Field{
		Name:         name,
		Type:         model.FieldTypeString,
		Widget:       model.WidgetEmail,
		Required:     true,
		Trim:         true,
		LabelKey:     "auth:fields.email",
		AutoComplete: "email",
	}
}

// AcceptNewsletter declares the optional platform newsletter consent checkbox.
func AcceptNewsletter(name string) model.Field {
	return model.Field{
		Name:     name,
		Type:     model.FieldTypeBoolean,
		Widget:   model.WidgetCheckbox,
		LabelKey: "validation:agree-with-newsletter",
		Default:  false,
		UIHints:  map[string]string{"labelAlign": "start"},
	}
}

// AcceptNewsletterCampaign declares the campaign-specific newsletter consent
// checkbox. It renders without top padding inside campaign pages.
func AcceptNewsletterCampaign(name string) model.Field {
	field := AcceptNewsletter(name)
	field.LabelKey = "validation:agree-with-newsletter-campaign"
	field.UIHints["cssClass"] = "pt-0"
	return field
}

package profile

import (
	"github.com/goliatone/go-donorform/pkg/fields"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/person"
)

// Field names of the name-update form.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldPassword  = "password"
)

// UpdateNameForm declares the name-update form.
func UpdateNameForm() model.FormModel {
	firstName := fields.Name(FieldFirstName, "auth:fields.first-name")
	firstName.AutoComplete = "given-name"
	lastName := fields.Name(FieldLastName, "auth:fields.last-name")
	lastName.AutoComplete = "family-name"

	return model.FormModel{
		ID:          "update-name",
		Endpoint:    "/account/name",
		Method:      "POST",
		Title:       "Update name",
		TitleKey:    "auth:profile.update-name",
		SubmitLabel: "common:actions.submit",
		Fields:      []model.Field{firstName, lastName, fields.Password()},
	}
}

// InitialValues seeds the form from the current record. The password
// always starts empty.
func InitialValues(current person.Person) form.Values {
	return form.Values{
		FieldFirstName: current.FirstName,
		FieldLastName:  current.LastName,
		FieldPassword:  "",
	}
}

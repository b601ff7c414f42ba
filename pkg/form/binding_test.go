package form_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-donorform/pkg/fields"
	"github.com/goliatone/go-donorform/pkg/form"
	"github.com/goliatone/go-donorform/pkg/model"
	"github.com/goliatone/go-donorform/pkg/validation"
)

func TestBindings_RevalidateOnChangeAndShowAfterBlur(t *testing.T) {
	c, err := form.New(nil, testSchema(), noopSubmit)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	password, err := form.PasswordField(c, "password")
	if err != nil {
		t.Fatalf("bind password: %v", err)
	}
	if err := password.OnChange("123"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, visible := password.Error(); visible {
		t.Fatalf("error must stay hidden until blur")
	}
	if !c.Errors().Has("password") {
		t.Fatalf("expected change to re-validate the field")
	}

	password.OnBlur()
	issue, visible := password.Error()
	if !visible || issue.Key != validation.KeyFieldTooShort {
		t.Fatalf("expected visible too-short issue, got %+v (visible=%v)", issue, visible)
	}

	if err := password.OnChange("secret1"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, visible := password.Error(); visible {
		t.Fatalf("expected issue cleared after valid input")
	}
	if password.Text() != "secret1" {
		t.Fatalf("unexpected bound value %q", password.Text())
	}
}

func TestCheckboxField_RejectsTextValues(t *testing.T) {
	c, err := form.New(nil, testSchema(), noopSubmit)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	box, err := form.CheckboxField(c, "newsletter")
	if err != nil {
		t.Fatalf("bind checkbox: %v", err)
	}
	if err := box.OnChange("on"); !errors.Is(err, form.ErrValueType) {
		t.Fatalf("expected type error, got %v", err)
	}
	if err := box.OnChange(true); err != nil {
		t.Fatalf("change: %v", err)
	}
	if !box.Checked() {
		t.Fatalf("expected checkbox checked")
	}

	if _, err := form.CheckboxField(c, "firstName"); !errors.Is(err, form.ErrValueType) {
		t.Fatalf("expected checkbox bind on text field to fail, got %v", err)
	}
	if _, err := form.TextField(c, "nickname"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestBind_PicksWidgetFromDeclaration(t *testing.T) {
	declared := model.FormModel{Fields: []model.Field{
		fields.Email("email"),
		fields.Password(),
		fields.AcceptNewsletter("newsletter"),
	}}
	schema, err := validation.FromForm(declared)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	c, err := form.New(nil, schema, noopSubmit)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	want := []model.Widget{model.WidgetEmail, model.WidgetPassword, model.WidgetCheckbox}
	for i, field := range declared.Fields {
		b, err := form.Bind(c, field)
		if err != nil {
			t.Fatalf("bind %s: %v", field.Name, err)
		}
		if b.Widget() != want[i] {
			t.Fatalf("field %s: want widget %s, got %s", field.Name, want[i], b.Widget())
		}
	}
}

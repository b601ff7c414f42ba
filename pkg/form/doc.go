// Package form implements the generic form container: it owns the values of
// one form instance, validates them against a validation.Schema, tracks which
// fields were touched, and runs the submit callback at most once at a time.
//
// Bindings (TextField, PasswordField, CheckboxField) are the widget-facing
// side: they read and write a single named value and expose the error to show
// under the input.
package form

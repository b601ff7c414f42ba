// Package validation compiles declarative field rules into a Schema that
// validates a snapshot of form values. Rules are pure predicates backed by
// ozzo-validation; each failing field yields one Issue carrying a
// translation key and its interpolation parameters.
//
//	schema := validation.MustNew(
//		validation.String("firstName", validation.Required()).Trimmed(),
//		validation.String("password", validation.Required(), validation.MinLength(6)),
//	)
//	errs := schema.Validate(values)
package validation

// Package model defines the static form declarations shared by the
// validation schema, the form container and the renderers. A FormModel lists
// its Fields in display order; each Field names its value kind (string or
// boolean), the widget used to draw it, and the ValidationRules that apply.
// Labels may be given literally or as translation keys (LabelKey) which the
// render package resolves per locale.
package model

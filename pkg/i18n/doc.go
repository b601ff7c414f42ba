// Package i18n loads the translation catalogs used by forms, alerts and
// report views. Catalog files live under locales/<locale>/<namespace>.yaml
// and keys are addressed as "namespace:key" the same way the templates and
// validation messages reference them.
package i18n

// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"bytes"
	"io"
	"testing"

	"github.com/goliatone/go-donorform/pkg/i18n"
)

// Catalog returns the embedded message catalog, failing the test when the
// locale files do not load.
func Catalog(t *testing.T) *i18n.Catalog {
	t.Helper()

	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}

// Translate returns an i18n.Func for locale backed by the embedded catalog.
func Translate(t *testing.T, locale string) i18n.Func {
	t.Helper()
	return Catalog(t).Func(locale)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

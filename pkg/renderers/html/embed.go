package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var templates embed.FS

// TemplatesFS returns the bundled templates rooted at the templates
// directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

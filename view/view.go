// Package view renders the lookup page.
package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/Ezhil1K/ChemSure/service"
)

// PageTemplate is the name gin renders for the lookup page
const PageTemplate = "index.html"

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.html"))

// Page is what the lookup page shows: the inputs and the session's display
type Page struct {
	Display       service.Display
	CASRN         string
	SubstanceName string
}

// Templates returns the parsed page templates for gin's HTML renderer
func Templates() *template.Template {
	return templates
}

// Render writes the page to w
func Render(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, PageTemplate, p)
}

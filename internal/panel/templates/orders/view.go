// Package orders renders the order detail page.
package orders

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var tmpl = layout.Parse(files, "*.html")

// Detail renders the full order page.
func Detail(chrome layout.Chrome, data DetailData) templ.Component {
	chrome.Title = data.Title
	return layout.Page(tmpl, chrome, data)
}

// Section renders the fulfillment section fragment.
func Section(data SectionData) templ.Component {
	return layout.Fragment(tmpl, "fulfillment-section", data)
}

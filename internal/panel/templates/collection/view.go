// Package collection renders the courier collection page.
package collection

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var tmpl = layout.Parse(files, "*.html")

// Page renders the full collection page.
func Page(chrome layout.Chrome, data PanelData) templ.Component {
	chrome.Title = data.L.T("orders.postexCollection.title")
	chrome.ActiveNav = layout.NavCollection
	return layout.Page(tmpl, chrome, data)
}

// Panel renders the swappable panel fragment.
func Panel(data PanelData) templ.Component {
	return layout.Fragment(tmpl, "collection-panel", data)
}

// Package locations renders the stock location pages.
package locations

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var (
	listTmpl = layout.Parse(files, "list.html")
	formTmpl = layout.Parse(files, "form.html")
)

// List renders the location list page.
func List(chrome layout.Chrome, data ListData) templ.Component {
	chrome.Title = data.L.T("stockLocations.list.title")
	chrome.ActiveNav = layout.NavLocations
	return layout.Page(listTmpl, chrome, data)
}

// FormPage renders the full create or edit page.
func FormPage(chrome layout.Chrome, data FormData) templ.Component {
	chrome.Title = data.Header
	chrome.ActiveNav = layout.NavLocations
	return layout.Page(formTmpl, chrome, data)
}

// FormFragment renders the form alone for htmx swaps.
func FormFragment(data FormData) templ.Component {
	return layout.Fragment(formTmpl, "location-form", data)
}

// CityField renders the city selector fragment.
func CityField(data CityFieldData) templ.Component {
	return layout.Fragment(formTmpl, "city-field", data)
}

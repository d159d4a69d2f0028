// Package pages renders the static terms page and the error page.
package pages

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var (
	termsTmpl = layout.Parse(files, "terms.html")
	errorTmpl = layout.Parse(files, "error.html")
)

// TermsData is the terms page payload. Body is sanitised markup.
type TermsData struct {
	L        *i18n.Localizer
	Body     template.HTML
	HomeHref string
}

// Terms renders the terms page without navigation.
func Terms(chrome layout.Chrome, data TermsData) templ.Component {
	chrome.Title = data.L.T("terms.title")
	chrome.Bare = true
	return layout.Page(termsTmpl, chrome, data)
}

// ErrorData is the error page payload.
type ErrorData struct {
	L        *i18n.Localizer
	Status   int
	Message  string
	HomeHref string
}

// Error renders a full error page.
func Error(chrome layout.Chrome, data ErrorData) templ.Component {
	chrome.Title = data.Message
	return layout.Page(errorTmpl, chrome, data)
}

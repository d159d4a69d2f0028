// Package categories renders the category create and detail pages.
package categories

import (
	"embed"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/catalog"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var (
	formTmpl   = layout.Parse(files, "categories.html")
	detailTmpl = layout.Parse(files, "detail.html")
)

// FormData is the category form payload.
type FormData struct {
	L          *i18n.Localizer
	Action     string
	CSRFToken  string
	Values     catalog.Form
	Statuses   []Choice
	Visibility []Choice
	Errors     map[string]string
	RootError  string
}

// Choice is one radio or select option.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// Build assembles the form, translating field error keys.
func Build(l *i18n.Localizer, basePath, csrf string, form catalog.Form, errs catalog.FieldErrors) FormData {
	data := FormData{
		L:         l,
		Action:    layout.Join(basePath, "/categories"),
		CSRFToken: csrf,
		Values:    form,
		Errors:    map[string]string{},
	}
	for field, key := range errs {
		if field == "" {
			data.RootError = l.T(key)
			continue
		}
		data.Errors[field] = l.T(key)
	}
	for _, s := range []string{catalog.StatusActive, catalog.StatusInactive} {
		data.Statuses = append(data.Statuses, Choice{Value: s, Label: l.T("categories.status." + s), Selected: form.Status == s})
	}
	for _, v := range []string{catalog.VisibilityPublic, catalog.VisibilityInternal} {
		data.Visibility = append(data.Visibility, Choice{Value: v, Label: l.T("categories.visibility." + v), Selected: form.Visibility == v})
	}
	return data
}

// Page renders the full create page.
func Page(chrome layout.Chrome, data FormData) templ.Component {
	chrome.Title = data.L.T("categories.create.header")
	chrome.ActiveNav = layout.NavCategories
	return layout.Page(formTmpl, chrome, data)
}

// Form renders the form fragment.
func Form(data FormData) templ.Component {
	return layout.Fragment(formTmpl, "category-form", data)
}

// DetailData is the category detail page payload.
type DetailData struct {
	L           *i18n.Localizer
	CSRFToken   string
	Category    catalog.Category
	Thumbnail   string
	Handle      string
	Description string
	ImageAction string
	Accept      string
}

// BuildDetail assembles the general section of a category.
func BuildDetail(l *i18n.Localizer, basePath, csrf string, c catalog.Category) DetailData {
	data := DetailData{
		L:           l,
		CSRFToken:   csrf,
		Category:    c,
		Thumbnail:   c.Thumbnail(),
		Description: c.Description,
		ImageAction: layout.Join(basePath, DetailPath(c.ID)+"/image"),
		Accept:      strings.Join(catalog.SupportedImageTypes, ","),
	}
	if data.Description == "" {
		data.Description = "-"
	}
	if c.Handle != "" {
		data.Handle = "/" + c.Handle
	}
	return data
}

// DetailPath is the detail page of a category relative to the base path.
func DetailPath(id string) string {
	return "/categories/" + url.PathEscape(id)
}

// Detail renders the full detail page.
func Detail(chrome layout.Chrome, data DetailData) templ.Component {
	chrome.Title = data.Category.Name
	chrome.ActiveNav = layout.NavCategories
	return layout.Page(detailTmpl, chrome, data)
}

// General renders the general section fragment.
func General(data DetailData) templ.Component {
	return layout.Fragment(detailTmpl, "category-general", data)
}

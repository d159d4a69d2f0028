// Package layout renders pages inside the shared shell and exposes page and
// fragment views as templ components.
package layout

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/goccy/go-json"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/helpers"
)

//go:embed *.html
var files embed.FS

// Nav sections.
const (
	NavDashboard  = "dashboard"
	NavCollection = "collection"
	NavLocations  = "locations"
	NavCategories = "categories"
)

// Chrome is the data the shell needs around every page.
type Chrome struct {
	L           *i18n.Localizer
	Title       string
	BasePath    string
	CSRFToken   string
	Environment string
	SellerEmail string
	ActiveNav   string
	// Bare pages (login, register, terms) render without navigation.
	Bare bool
	// SwitchLang is the language offered by the language toggle.
	SwitchLang string
	RequestPath string
}

// NavItem is one navigation link.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// Nav returns the navigation links.
func (c Chrome) Nav() []NavItem {
	items := []struct{ key, label, path string }{
		{NavDashboard, "nav.dashboard", "/"},
		{NavCollection, "nav.collection", "/orders/collection"},
		{NavLocations, "nav.locations", "/locations"},
		{NavCategories, "nav.categories", "/categories/new"},
	}
	out := make([]NavItem, 0, len(items))
	for _, it := range items {
		out = append(out, NavItem{Label: c.L.T(it.label), Href: Join(c.BasePath, it.path), Active: c.ActiveNav == it.key})
	}
	return out
}

// Href joins path onto the base path.
func (c Chrome) Href(path string) string {
	return Join(c.BasePath, path)
}

// SwitchHref is the current page with the alternate language requested.
func (c Chrome) SwitchHref() string {
	path := c.RequestPath
	if path == "" {
		path = c.Href("/")
	}
	return path + "?lng=" + c.SwitchLang
}

// View is the template data of a full page.
type View struct {
	Chrome
	Body any
}

// Join joins a base path and an absolute path.
func Join(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" || path == "/" {
		if base == "" {
			return "/"
		}
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"badgeClass": func(b status.Badge) string { return helpers.StatusBadgeClass(b) },
		"toneClass":  helpers.BadgeClass,
		"currency":   helpers.Currency,
		"number":     helpers.Number,
		"date":       helpers.Date,
		"join":       strings.Join,
		"json": func(v any) (string, error) {
			raw, err := json.Marshal(v)
			return string(raw), err
		},
	}
}

var (
	baseOnce sync.Once
	base     *template.Template
)

func baseTemplate() *template.Template {
	baseOnce.Do(func() {
		base = template.Must(template.New("layout").Funcs(Funcs()).ParseFS(files, "*.html"))
	})
	return base
}

// Parse clones the shell and adds the page templates matched in fsys.
func Parse(fsys fs.FS, patterns ...string) *template.Template {
	t := template.Must(baseTemplate().Clone())
	return template.Must(t.ParseFS(fsys, patterns...))
}

// Page renders body with the "content" template of t inside the shell.
func Page(t *template.Template, chrome Chrome, body any) templ.Component {
	return Fragment(t, "layout", View{Chrome: chrome, Body: body})
}

// Fragment renders a single named template.
func Fragment(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

// Package dashboard renders the landing page.
package dashboard

import (
	"embed"
	"net/url"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/helpers"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var tmpl = layout.Parse(files, "*.html")

// recentLimit caps the orders listed on the dashboard.
const recentLimit = 5

// Data is the dashboard payload.
type Data struct {
	L              *i18n.Localizer
	Email          string
	PendingCount   int
	CollectionHref string
	Recent         []RecentOrder
	Shortcuts      []Shortcut
}

// RecentOrder is one order awaiting collection.
type RecentOrder struct {
	Number string
	Email  string
	Total  string
	Badge  status.Badge
	Href   string
}

// Shortcut is a dashboard tile.
type Shortcut struct {
	Label string
	Href  string
}

// Build assembles the dashboard from the collection candidates.
func Build(l *i18n.Localizer, basePath, email string, pending []orders.Order) Data {
	data := Data{
		L:              l,
		Email:          email,
		PendingCount:   len(pending),
		CollectionHref: layout.Join(basePath, "/orders/collection"),
		Shortcuts: []Shortcut{
			{Label: l.T("nav.collection"), Href: layout.Join(basePath, "/orders/collection")},
			{Label: l.T("nav.locations"), Href: layout.Join(basePath, "/locations")},
			{Label: l.T("nav.categories"), Href: layout.Join(basePath, "/categories/new")},
		},
	}
	for i, o := range pending {
		if i == recentLimit {
			break
		}
		data.Recent = append(data.Recent, RecentOrder{
			Number: "#" + o.Number(),
			Email:  o.Email,
			Total:  helpers.Currency(o.Total.Float(), o.Currency(), l.Lang()),
			Badge:  status.Fulfillment(o.FulfillmentStatus),
			Href:   layout.Join(basePath, "/orders/"+url.PathEscape(o.ID)),
		})
	}
	return data
}

// Page renders the dashboard.
func Page(chrome layout.Chrome, data Data) templ.Component {
	chrome.Title = data.L.T("dashboard.title")
	chrome.ActiveNav = layout.NavDashboard
	return layout.Page(tmpl, chrome, data)
}

// Package shipping renders the service zone and shipping option pages.
package shipping

import (
	"embed"
	"net/url"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/provider"
	panelshipping "github.com/MKdir98/vendor-panel/internal/panel/shipping"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var (
	zonesTmpl = layout.Parse(files, "zones.html")
	formTmpl  = layout.Parse(files, "option.html")
)

// ZonesData lists the service zones a location can get shipping options for.
type ZonesData struct {
	L            *i18n.Localizer
	LocationName string
	BackHref     string
	Zones        []ZoneRow
}

// ZoneRow is one service zone with its create links.
type ZoneRow struct {
	ID           string
	Name         string
	ShippingHref string
	PickupHref   string
	ReturnHref   string
}

// BuildZones assembles the zones page.
func BuildZones(l *i18n.Localizer, basePath, locationID, locationName string, zones []panelshipping.ServiceZone) ZonesData {
	data := ZonesData{L: l, LocationName: locationName, BackHref: layout.Join(basePath, "/locations")}
	for _, z := range zones {
		href := NewOptionPath(basePath, locationID, z.ID)
		data.Zones = append(data.Zones, ZoneRow{
			ID:           z.ID,
			Name:         z.Name,
			ShippingHref: href,
			PickupHref:   href + "?kind=" + panelshipping.KindPickup,
			ReturnHref:   href + "?is_return=true",
		})
	}
	return data
}

// NewOptionPath is the create shipping option page for a zone.
func NewOptionPath(basePath, locationID, zoneID string) string {
	return layout.Join(basePath, "/locations/"+url.PathEscape(locationID)+"/service-zones/"+url.PathEscape(zoneID)+"/shipping-options/new")
}

// Choice is one radio or select option.
type Choice struct {
	Value    string
	Label    string
	Hint     string
	Selected bool
}

// FormInput is what the option form is built from.
type FormInput struct {
	L          *i18n.Localizer
	BasePath   string
	CSRFToken  string
	LocationID string
	Zone       panelshipping.ServiceZone
	Form       panelshipping.Form
	Choices    panelshipping.Choices
	Errors     panelshipping.FieldErrors
	RootError  string
}

// FormData is the option form payload.
type FormData struct {
	L             *i18n.Localizer
	Action        string
	CSRFToken     string
	Header        string
	Hint          string
	ShowPriceType bool
	Values        panelshipping.Form
	PriceTypes    []Choice
	Profiles      []Choice
	Providers     []Choice
	Zones         []Choice
	Errors        map[string]string
	RootError     string
}

// BuildForm assembles the option form. Provider ids are shown with their
// display names.
func BuildForm(in FormInput) FormData {
	l := in.L
	f := in.Form

	headerKind := "shipping"
	hintKind := "shipping"
	switch {
	case f.IsPickup():
		headerKind, hintKind = "pickup", "pickup"
		if f.IsReturn {
			hintKind = "returns"
		}
	case f.IsReturn:
		headerKind, hintKind = "returns", "returns"
	}

	data := FormData{
		L:             l,
		Action:        NewOptionPath(in.BasePath, in.LocationID, in.Zone.ID),
		CSRFToken:     in.CSRFToken,
		Header:        l.T("stockLocations.shippingOptions.create."+headerKind+".header", "zone", in.Zone.Name),
		Hint:          l.T("stockLocations.shippingOptions.create." + hintKind + ".hint"),
		ShowPriceType: !f.IsPickup(),
		Values:        f,
		Errors:        map[string]string{},
		RootError:     in.RootError,
	}
	for field, key := range in.Errors {
		if field == "" {
			if data.RootError == "" {
				data.RootError = l.T(key)
			}
			continue
		}
		data.Errors[field] = l.T(key)
	}

	for _, pt := range []string{panelshipping.PriceTypeFlat, panelshipping.PriceTypeCalculated} {
		key := "fixed"
		if pt == panelshipping.PriceTypeCalculated {
			key = "calculated"
		}
		data.PriceTypes = append(data.PriceTypes, Choice{
			Value:    pt,
			Label:    l.T("stockLocations.shippingOptions.fields.priceType.options." + key + ".label"),
			Hint:     l.T("stockLocations.shippingOptions.fields.priceType.options." + key + ".hint"),
			Selected: f.PriceType == pt,
		})
	}
	for _, p := range in.Choices.Profiles {
		data.Profiles = append(data.Profiles, Choice{Value: p.ID, Label: p.Label(), Selected: f.ShippingProfileID == p.ID})
	}
	for _, p := range in.Choices.Providers {
		data.Providers = append(data.Providers, Choice{Value: p.ID, Label: provider.Format(p.ID), Selected: f.ProviderID == p.ID})
	}
	for _, z := range in.Choices.Zones {
		data.Zones = append(data.Zones, Choice{Value: z.ID, Label: z.Name, Selected: f.ServiceZoneID == z.ID})
	}
	return data
}

// Zones renders the service zones page.
func Zones(chrome layout.Chrome, data ZonesData) templ.Component {
	chrome.Title = data.L.T("stockLocations.serviceZones.title")
	chrome.ActiveNav = layout.NavLocations
	return layout.Page(zonesTmpl, chrome, data)
}

// FormPage renders the full create option page.
func FormPage(chrome layout.Chrome, data FormData) templ.Component {
	chrome.Title = data.Header
	chrome.ActiveNav = layout.NavLocations
	return layout.Page(formTmpl, chrome, data)
}

// FormFragment renders the option form.
func FormFragment(data FormData) templ.Component {
	return layout.Fragment(formTmpl, "shipping-option-form", data)
}

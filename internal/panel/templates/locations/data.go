package locations

import (
	"net/url"
	"strings"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	panellocations "github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

// ListData is the stock location list payload.
type ListData struct {
	L       *i18n.Localizer
	NewHref string
	Rows    []ListRow
}

// ListRow is one stock location.
type ListRow struct {
	ID        string
	Name      string
	Address   string
	EditHref  string
	ZonesHref string
}

// BuildList assembles the location list.
func BuildList(l *i18n.Localizer, basePath string, list []panellocations.StockLocation) ListData {
	data := ListData{L: l, NewHref: layout.Join(basePath, "/locations/new")}
	for _, loc := range list {
		data.Rows = append(data.Rows, ListRow{
			ID:       loc.ID,
			Name:     loc.Name,
			Address:  addressLine(loc.Address),
			EditHref:  layout.Join(basePath, "/locations/"+url.PathEscape(loc.ID)+"/edit"),
			ZonesHref: layout.Join(basePath, "/locations/"+url.PathEscape(loc.ID)+"/service-zones"),
		})
	}
	return data
}

func addressLine(a panellocations.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Address1, a.City, a.Province, a.PostalCode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "، ")
}

// Option is one select entry.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FormInput is what the location form is built from.
type FormInput struct {
	L          *i18n.Localizer
	BasePath   string
	CSRFToken  string
	LocationID string
	Form       *panellocations.Form
	States     []panellocations.State
	Cities     []panellocations.City
	Errors     panellocations.FieldErrors
	RootError  string
}

// FormData is the location form payload.
type FormData struct {
	L         *i18n.Localizer
	Header    string
	Hint      string
	Action    string
	CSRFToken string
	IsEdit    bool
	CitiesURL string
	Values    panellocations.FormAddress
	Name      string
	States    []Option
	City      CityFieldData
	Errors    map[string]string
	RootError string
}

// CityFieldData is the city selector, re-rendered on every state change.
type CityFieldData struct {
	L        *i18n.Localizer
	StateID  string
	Options  []Option
	Disabled bool
	Empty    bool
	Error    string
}

// BuildForm assembles the create or edit form.
func BuildForm(in FormInput) FormData {
	f := in.Form
	data := FormData{
		L:         in.L,
		CSRFToken: in.CSRFToken,
		IsEdit:    in.LocationID != "",
		CitiesURL: layout.Join(in.BasePath, "/locations/cities"),
		Values:    f.Address,
		Name:      f.Name,
		Errors:    map[string]string{},
		RootError: in.RootError,
	}
	if data.IsEdit {
		data.Header = in.L.T("stockLocations.edit.header")
		data.Action = layout.Join(in.BasePath, "/locations/"+url.PathEscape(in.LocationID))
	} else {
		data.Header = in.L.T("stockLocations.create.header")
		data.Hint = in.L.T("stockLocations.create.hint")
		data.Action = layout.Join(in.BasePath, "/locations")
	}
	for field, key := range in.Errors {
		data.Errors[field] = in.L.T(key)
	}
	for _, s := range in.States {
		data.States = append(data.States, Option{Value: s.ID, Label: s.Name, Selected: s.ID == f.Address.StateID})
	}
	data.City = BuildCityField(in.L, f, in.Cities, data.Errors["address.city_id"])
	return data
}

// BuildCityField assembles the city selector for the form's current state.
func BuildCityField(l *i18n.Localizer, f *panellocations.Form, cities []panellocations.City, errMsg string) CityFieldData {
	data := CityFieldData{
		L:        l,
		StateID:  f.Address.StateID,
		Disabled: f.CityDisabled(),
		Error:    errMsg,
	}
	for _, c := range cities {
		data.Options = append(data.Options, Option{Value: c.ID, Label: c.Name, Selected: c.ID == f.Address.CityID})
	}
	data.Empty = !data.Disabled && len(data.Options) == 0
	return data
}

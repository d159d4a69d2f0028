package collection

import (
	"net/url"

	panelcollection "github.com/MKdir98/vendor-panel/internal/panel/collection"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/helpers"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

// Input is what the collection panel is built from.
type Input struct {
	L         *i18n.Localizer
	BasePath  string
	Orders    []orders.Order
	Workflow  *panelcollection.Workflow
	LabelBase string
}

// PanelData is the collection panel payload.
type PanelData struct {
	L             *i18n.Localizer
	Rows          []Row
	AllSelected   bool
	CanRequest    bool
	Submitting    bool
	SelectedCount int
	Result        *ResultView

	ToggleHref     string
	ToggleAllHref  string
	RequestHref    string
	SelectMoreHref string
}

// Row is one candidate order.
type Row struct {
	ID         string
	Number     string
	Email      string
	Items      string
	Total      string
	Selected   bool
	DetailHref string
}

// ResultView is the outcome of the last request.
type ResultView struct {
	Shipments []ShipmentRow
	Errors    []panelcollection.ShipmentError
	LabelURLs []string
}

// ShipmentRow is one created shipment.
type ShipmentRow struct {
	OrderID        string
	TrackingNumber string
	LabelURL       string
}

// Build assembles the collection panel from the workflow state.
func Build(in Input) PanelData {
	w := in.Workflow
	lang := in.L.Lang()
	data := PanelData{
		L:              in.L,
		AllSelected:    w.AllSelected(len(in.Orders)),
		CanRequest:     w.CanRequest(),
		Submitting:     w.Phase() == panelcollection.Submitting,
		SelectedCount:  len(w.Selected()),
		ToggleHref:     layout.Join(in.BasePath, "/orders/collection/toggle"),
		ToggleAllHref:  layout.Join(in.BasePath, "/orders/collection/toggle-all"),
		RequestHref:    layout.Join(in.BasePath, "/orders/collection/request"),
		SelectMoreHref: layout.Join(in.BasePath, "/orders/collection/select-more"),
	}

	if r := w.Result(); r != nil && w.Phase() == panelcollection.Resulted {
		view := &ResultView{Errors: r.Errors, LabelURLs: panelcollection.LabelURLs(*r, in.LabelBase)}
		for _, s := range r.Shipments {
			view.Shipments = append(view.Shipments, ShipmentRow{
				OrderID:        s.OrderID,
				TrackingNumber: s.TrackingNumber,
				LabelURL:       panelcollection.ResolveLabelURL(in.LabelBase, s.LabelURL),
			})
		}
		data.Result = view
		return data
	}

	for _, o := range in.Orders {
		data.Rows = append(data.Rows, Row{
			ID:         o.ID,
			Number:     "#" + o.Number(),
			Email:      o.Email,
			Items:      itemsSummary(o, lang),
			Total:      helpers.Currency(o.Total.Float(), o.Currency(), lang),
			Selected:   w.IsSelected(o.ID),
			DetailHref: layout.Join(in.BasePath, "/orders/"+url.PathEscape(o.ID)),
		})
	}
	return data
}

func itemsSummary(o orders.Order, lang string) string {
	if o.ItemsSummary != "" {
		return o.ItemsSummary
	}
	out := ""
	for i, item := range o.Items {
		if i > 0 {
			out += "، "
		}
		out += helpers.Number(orders.Quantity(item), lang) + "× " + item.Title
	}
	return out
}

package orders

import (
	"net/url"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	panelorders "github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/provider"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/helpers"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

// DetailInput is everything the order page is built from.
type DetailInput struct {
	L         *i18n.Localizer
	Order     panelorders.Order
	Locations map[string]locations.StockLocation
	Courier   status.Courier
	BasePath  string
}

// DetailData is the order detail page payload.
type DetailData struct {
	L                *i18n.Localizer
	Title            string
	Email            string
	CreatedAt        string
	Total            string
	OrderBadge       status.Badge
	ShowOrderBadge   bool
	FulfillmentBadge status.Badge
	Payment          PaymentData
	Section          SectionData
}

// PaymentData is the payment summary.
type PaymentData struct {
	Badge       status.Badge
	HasSplit    bool
	Captured    string
	Refunded    string
	ShowRefund  bool
	Pending     string
	ShowPending bool
}

// SectionData is the fulfillment section, re-rendered after every action.
type SectionData struct {
	L           *i18n.Localizer
	OrderID     string
	Canceled    bool
	Unfulfilled []UnfulfilledCard
	Cards       []FulfillmentCard
}

// UnfulfilledCard groups unfulfilled lines by whether they ship.
type UnfulfilledCard struct {
	L        *i18n.Localizer
	Shipping bool
	Lines    []UnfulfilledLine
}

// UnfulfilledLine is a line item with quantity left to fulfil.
type UnfulfilledLine struct {
	Title     string
	SKU       string
	Options   string
	Thumbnail string
	Remaining string
	UnitPrice string
}

// FulfillmentCard is one fulfillment.
type FulfillmentCard struct {
	ID           string
	Number       string
	Status       status.CardStatus
	StatusLabel  string
	At           string
	Items        []CardItem
	ShippingFrom string
	Provider     string
	Labels       []CardLabel
	Actions      status.CardActions
	LabelHref    string
	ShipHref     string
	DeliverHref  string
	CancelHref   string
	DeliverLabel string
}

// CardItem is one fulfilled line.
type CardItem struct {
	Title    string
	Quantity string
}

// CardLabel is one tracking label.
type CardLabel struct {
	TrackingNumber string
	URL            string
	HasLink        bool
}

// BuildDetail assembles the order page.
func BuildDetail(in DetailInput) DetailData {
	o := in.Order
	lang := in.L.Lang()

	orderBadge, showOrderBadge := status.CanceledOrder(o.Status)
	return DetailData{
		L:                in.L,
		Title:            in.L.T("orders.detail.title", "number", o.Number()),
		Email:            o.Email,
		CreatedAt:        helpers.Date(o.CreatedAt),
		Total:            helpers.Currency(o.Total.Float(), o.Currency(), lang),
		OrderBadge:       orderBadge,
		ShowOrderBadge:   showOrderBadge,
		FulfillmentBadge: status.Fulfillment(o.FulfillmentStatus),
		Payment:          buildPayment(o, lang),
		Section:          BuildSection(in),
	}
}

func buildPayment(o panelorders.Order, lang string) PaymentData {
	p := PaymentData{Badge: status.Payment(o.PaymentStatus)}
	sp := o.SplitPayment
	if sp == nil {
		return p
	}
	currency := sp.CurrencyCode
	if currency == "" {
		currency = o.Currency()
	}
	p.HasSplit = true
	p.Captured = helpers.Currency(sp.CapturedAmount.Float(), currency, lang)
	if sp.ShowRefunded() {
		p.ShowRefund = true
		p.Refunded = helpers.Currency(sp.RefundedAmount.Float(), currency, lang)
	}
	if sp.ShowPending(o) {
		p.ShowPending = true
		p.Pending = helpers.Currency(sp.Pending(), currency, lang)
	}
	return p
}

// BuildSection assembles the fulfillment section.
func BuildSection(in DetailInput) SectionData {
	o := in.Order
	lang := in.L.Lang()
	section := SectionData{L: in.L, OrderID: o.ID, Canceled: o.IsCanceled()}

	if !section.Canceled {
		breakdown := panelorders.PartitionUnfulfilled(o)
		if len(breakdown.WithShipping) > 0 {
			section.Unfulfilled = append(section.Unfulfilled, UnfulfilledCard{
				L: in.L, Shipping: true, Lines: unfulfilledLines(breakdown.WithShipping, o, lang),
			})
		}
		if len(breakdown.WithoutShipping) > 0 {
			section.Unfulfilled = append(section.Unfulfilled, UnfulfilledCard{
				L: in.L, Lines: unfulfilledLines(breakdown.WithoutShipping, o, lang),
			})
		}
	}

	for i, f := range o.Fulfillments {
		section.Cards = append(section.Cards, buildCard(in, f, i+1))
	}
	return section
}

func unfulfilledLines(items []panelorders.LineItem, o panelorders.Order, lang string) []UnfulfilledLine {
	out := make([]UnfulfilledLine, 0, len(items))
	for _, item := range items {
		opts := ""
		for i, v := range item.OptionValues() {
			if i > 0 {
				opts += " · "
			}
			opts += v
		}
		out = append(out, UnfulfilledLine{
			Title:     item.Title,
			SKU:       item.VariantSKU,
			Options:   opts,
			Thumbnail: item.Thumbnail,
			Remaining: helpers.Number(panelorders.Remaining(item), lang),
			UnitPrice: helpers.Currency(item.UnitPrice.Float(), o.Currency(), lang),
		})
	}
	return out
}

func buildCard(in DetailInput, f panelorders.Fulfillment, n int) FulfillmentCard {
	markers := f.Markers()
	card := status.Card(markers, in.Courier)
	actions := status.Actions(markers, in.Courier)
	lang := in.L.Lang()

	base := layout.Join(in.BasePath, "/orders/"+url.PathEscape(in.Order.ID)+"/fulfillments/"+url.PathEscape(f.ID))
	out := FulfillmentCard{
		ID:          f.ID,
		Number:      in.L.T("orders.fulfillment.number", "number", n),
		Status:      card,
		StatusLabel: in.L.T(card.LabelKey),
		At:          helpers.Date(card.At),
		Provider:    provider.Format(f.ProviderID),
		Actions:     actions,
		LabelHref:   base + "/label",
		ShipHref:    base + "/ship",
		DeliverHref: base + "/deliver",
		CancelHref:  base + "/cancel",
	}
	if card.Pickup {
		out.DeliverLabel = in.L.T("orders.fulfillment.markAsPickedUp")
	} else {
		out.DeliverLabel = in.L.T("orders.fulfillment.markAsDelivered")
	}
	for _, item := range f.LineItems() {
		out.Items = append(out.Items, CardItem{Title: item.Title, Quantity: helpers.Number(item.Quantity.Float(), lang)})
	}
	if loc, ok := in.Locations[f.LocationID]; ok {
		out.ShippingFrom = loc.Name
	}
	for _, l := range f.Labels {
		link, ok := l.Link()
		out.Labels = append(out.Labels, CardLabel{TrackingNumber: l.TrackingNumber, URL: link, HasLink: ok})
	}
	return out
}

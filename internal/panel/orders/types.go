package orders

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

// Amount is a numeric backend value that may arrive as a JSON number, a
// numeric string, or a big-number object of the form {"value": "..."}.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return a.parse(s)
	case '{':
		var obj struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if len(obj.Value) == 0 {
			*a = 0
			return nil
		}
		return a.UnmarshalJSON(obj.Value)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("orders: invalid amount %s: %w", data, err)
		}
		*a = Amount(f)
		return nil
	}
}

func (a *Amount) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("orders: invalid amount %q: %w", s, err)
	}
	*a = Amount(f)
	return nil
}

// Float returns the amount as float64.
func (a Amount) Float() float64 { return float64(a) }

// Order is a vendor order as returned by the backend.
type Order struct {
	ID                string                   `json:"id"`
	DisplayID         int                      `json:"display_id"`
	Email             string                   `json:"email"`
	CurrencyCode      string                   `json:"currency_code"`
	Status            status.OrderStatus       `json:"status"`
	PaymentStatus     status.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus status.FulfillmentStatus `json:"fulfillment_status"`
	Total             Amount                   `json:"total"`
	ItemsSummary      string                   `json:"items_summary"`
	Items             []LineItem               `json:"items"`
	Fulfillments      []Fulfillment            `json:"fulfillments"`
	ShippingMethods   []ShippingMethod         `json:"shipping_methods"`
	SplitPayment      *SplitPayment            `json:"split_order_payment"`
	CreatedAt         time.Time                `json:"created_at"`
}

// Number is the short order reference shown in lists: the display id, or the
// first eight characters of the id.
func (o Order) Number() string {
	if o.DisplayID > 0 {
		return strconv.Itoa(o.DisplayID)
	}
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}

// Currency returns the order currency, defaulting to IRR.
func (o Order) Currency() string {
	if strings.TrimSpace(o.CurrencyCode) == "" {
		return "IRR"
	}
	return strings.ToUpper(o.CurrencyCode)
}

// IsCanceled reports whether the order is canceled.
func (o Order) IsCanceled() bool {
	return o.Status == status.OrderCanceled
}

// LineItem is one ordered variant.
type LineItem struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	VariantSKU       string          `json:"variant_sku"`
	Thumbnail        string          `json:"thumbnail"`
	UnitPrice        Amount          `json:"unit_price"`
	Subtotal         Amount          `json:"subtotal"`
	Quantity         *Amount         `json:"quantity"`
	RawQuantity      *Amount         `json:"raw_quantity"`
	RequiresShipping bool            `json:"requires_shipping"`
	Detail           *LineItemDetail `json:"detail"`
	Variant          *Variant        `json:"variant"`
}

// LineItemDetail carries fulfillment progress for a line item.
type LineItemDetail struct {
	FulfilledQuantity    *Amount `json:"fulfilled_quantity"`
	RawFulfilledQuantity *Amount `json:"raw_fulfilled_quantity"`
}

// Variant holds the option values shown beside a line item.
type Variant struct {
	Options []struct {
		Value string `json:"value"`
	} `json:"options"`
}

// OptionValues returns the variant option values in order.
func (i LineItem) OptionValues() []string {
	if i.Variant == nil {
		return nil
	}
	out := make([]string, 0, len(i.Variant.Options))
	for _, o := range i.Variant.Options {
		out = append(out, o.Value)
	}
	return out
}

// Fulfillment is a shipment or pickup covering some of an order's items.
type Fulfillment struct {
	ID                   string            `json:"id"`
	ProviderID           string            `json:"provider_id"`
	LocationID           string            `json:"location_id"`
	ShippingOptionTypeID string            `json:"shipping_option_type_id"`
	RequiresShipping     bool              `json:"requires_shipping"`
	CreatedAt            time.Time         `json:"created_at"`
	ShippedAt            *time.Time        `json:"shipped_at"`
	DeliveredAt          *time.Time        `json:"delivered_at"`
	CanceledAt           *time.Time        `json:"canceled_at"`
	Items                []FulfillmentItem `json:"items"`
	FulfillmentItems     []FulfillmentItem `json:"fulfillment_items"`
	Labels               []Label           `json:"labels"`
}

// FulfillmentItem is one line item inside a fulfillment.
type FulfillmentItem struct {
	LineItemID string `json:"line_item_id"`
	Title      string `json:"title"`
	Quantity   Amount `json:"quantity"`
}

// Label is a tracking label attached to a fulfillment.
type Label struct {
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	URL            string `json:"url"`
	LabelURL       string `json:"label_url"`
}

// Link returns the tracking url, if it is usable.
func (l Label) Link() (string, bool) {
	u := strings.TrimSpace(l.TrackingURL)
	if u == "" {
		u = strings.TrimSpace(l.URL)
	}
	if u == "" || u == "#" {
		return "", false
	}
	return u, true
}

// LineItems returns items, falling back to fulfillment_items.
func (f Fulfillment) LineItems() []FulfillmentItem {
	if len(f.Items) > 0 {
		return f.Items
	}
	return f.FulfillmentItems
}

// Markers projects the fields the status rules need.
func (f Fulfillment) Markers() status.FulfillmentMarkers {
	return status.FulfillmentMarkers{
		ProviderID:           f.ProviderID,
		ShippingOptionTypeID: f.ShippingOptionTypeID,
		RequiresShipping:     f.RequiresShipping,
		CreatedAt:            f.CreatedAt,
		ShippedAt:            f.ShippedAt,
		DeliveredAt:          f.DeliveredAt,
		CanceledAt:           f.CanceledAt,
	}
}

// ShippingMethod is a chosen shipping method on the order.
type ShippingMethod struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	ShippingOption *ShippingOption `json:"shipping_option"`
}

// ShippingOption identifies the fulfillment provider behind a method.
type ShippingOption struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
}

// SplitPayment aggregates staged payment amounts.
type SplitPayment struct {
	AuthorizedAmount Amount               `json:"authorized_amount"`
	CapturedAmount   Amount               `json:"captured_amount"`
	RefundedAmount   Amount               `json:"refunded_amount"`
	Status           status.PaymentStatus `json:"status"`
	CurrencyCode     string               `json:"currency_code"`
}

// Pending is the authorized amount not yet captured.
func (p SplitPayment) Pending() float64 {
	return p.AuthorizedAmount.Float() - p.CapturedAmount.Float()
}

// ShowRefunded reports whether the refunded row applies.
func (p SplitPayment) ShowRefunded() bool {
	return p.Status == status.PaymentRefunded || p.Status == status.PaymentPartiallyRefunded
}

// ShowPending reports whether the outstanding row applies for the order.
func (p SplitPayment) ShowPending(o Order) bool {
	return !o.IsCanceled() && p.Pending() > 0
}

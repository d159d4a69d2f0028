// Package status maps order, payment and fulfillment state to display badges.
//
// Every mapper returns a Badge whose LabelKey is a message-catalog key; the
// caller resolves it through the request localizer. Mappers are total: codes
// outside the documented tables resolve to Fallback.
package status

// Color is the severity tone of a badge.
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

// Badge is a label key paired with a severity color.
type Badge struct {
	LabelKey string
	Color    Color
}

// Fallback is returned for unknown or absent status codes.
var Fallback = Badge{LabelKey: "-", Color: ColorOrange}

// IsFallback reports whether b is the unknown-status badge.
func (b Badge) IsFallback() bool {
	return b == Fallback
}

// Tone maps a badge color onto the semantic tones used by the templates.
func (b Badge) Tone() string {
	switch b.Color {
	case ColorRed:
		return "danger"
	case ColorOrange:
		return "warning"
	case ColorGreen:
		return "success"
	case ColorBlue:
		return "info"
	default:
		return "neutral"
	}
}

// OrderStatus is the overall order lifecycle code.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCanceled  OrderStatus = "canceled"
)

// Order maps the overall order status.
func Order(s OrderStatus) Badge {
	switch s {
	case OrderCanceled:
		return Badge{LabelKey: "orders.status.canceled", Color: ColorRed}
	case OrderPending:
		return Badge{LabelKey: "orders.status.pending", Color: ColorOrange}
	case OrderCompleted:
		return Badge{LabelKey: "orders.status.completed", Color: ColorGreen}
	default:
		return Fallback
	}
}

// CanceledOrder returns a badge only for terminal order states.
func CanceledOrder(s OrderStatus) (Badge, bool) {
	switch s {
	case OrderCanceled:
		return Badge{LabelKey: "orders.status.canceled", Color: ColorRed}, true
	case OrderCompleted:
		return Badge{LabelKey: "orders.status.completed", Color: ColorGreen}, true
	default:
		return Badge{}, false
	}
}

package status

import (
	"strings"
	"time"
)

// FulfillmentStatus is the order-level fulfillment status code.
type FulfillmentStatus string

const (
	FulfillmentNotFulfilled       FulfillmentStatus = "not_fulfilled"
	FulfillmentPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentFulfilled          FulfillmentStatus = "fulfilled"
	FulfillmentPartiallyShipped   FulfillmentStatus = "partially_shipped"
	FulfillmentShipped            FulfillmentStatus = "shipped"
	FulfillmentDelivered          FulfillmentStatus = "delivered"
	FulfillmentPartiallyDelivered FulfillmentStatus = "partially_delivered"
	FulfillmentPartiallyReturned  FulfillmentStatus = "partially_returned"
	FulfillmentReturned           FulfillmentStatus = "returned"
	FulfillmentCanceled           FulfillmentStatus = "canceled"
	FulfillmentRequiresAction     FulfillmentStatus = "requires_action"
)

// FulfillmentStatuses lists every documented fulfillment status code.
func FulfillmentStatuses() []FulfillmentStatus {
	return []FulfillmentStatus{
		FulfillmentNotFulfilled,
		FulfillmentPartiallyFulfilled,
		FulfillmentFulfilled,
		FulfillmentPartiallyShipped,
		FulfillmentShipped,
		FulfillmentDelivered,
		FulfillmentPartiallyDelivered,
		FulfillmentPartiallyReturned,
		FulfillmentReturned,
		FulfillmentCanceled,
		FulfillmentRequiresAction,
	}
}

// Fulfillment maps an order fulfillment status to its badge.
func Fulfillment(s FulfillmentStatus) Badge {
	switch s {
	case FulfillmentNotFulfilled:
		return Badge{LabelKey: "orders.fulfillment.status.notFulfilled", Color: ColorRed}
	case FulfillmentPartiallyFulfilled:
		return Badge{LabelKey: "orders.fulfillment.status.partiallyFulfilled", Color: ColorOrange}
	case FulfillmentFulfilled:
		return Badge{LabelKey: "orders.fulfillment.status.fulfilled", Color: ColorGreen}
	case FulfillmentPartiallyShipped:
		return Badge{LabelKey: "orders.fulfillment.status.partiallyShipped", Color: ColorOrange}
	case FulfillmentShipped:
		return Badge{LabelKey: "orders.fulfillment.status.shipped", Color: ColorGreen}
	case FulfillmentDelivered:
		return Badge{LabelKey: "orders.fulfillment.status.delivered", Color: ColorGreen}
	case FulfillmentPartiallyDelivered:
		return Badge{LabelKey: "orders.fulfillment.status.partiallyDelivered", Color: ColorOrange}
	case FulfillmentPartiallyReturned:
		return Badge{LabelKey: "orders.fulfillment.status.partiallyReturned", Color: ColorOrange}
	case FulfillmentReturned:
		return Badge{LabelKey: "orders.fulfillment.status.returned", Color: ColorGreen}
	case FulfillmentCanceled:
		return Badge{LabelKey: "orders.fulfillment.status.canceled", Color: ColorRed}
	case FulfillmentRequiresAction:
		return Badge{LabelKey: "orders.fulfillment.status.requiresAction", Color: ColorOrange}
	default:
		return Fallback
	}
}

// Courier identifies the pickup integration whose fulfillments are collected
// by the courier rather than shipped by the seller.
type Courier struct {
	// ProviderKey is matched as a substring of fulfillment provider ids.
	ProviderKey string
	// PickupOptionType is the shipping option type id of courier pickups.
	PickupOptionType string
}

// DefaultCourier is the Postex integration.
var DefaultCourier = Courier{ProviderKey: "postex", PickupOptionType: "postex-pickup"}

// Handles reports whether providerID belongs to the courier integration.
func (c Courier) Handles(providerID string) bool {
	key := strings.TrimSpace(c.ProviderKey)
	return key != "" && strings.Contains(providerID, key)
}

// FulfillmentMarkers is the subset of a fulfillment record that drives its
// card status.
type FulfillmentMarkers struct {
	ProviderID           string
	ShippingOptionTypeID string
	RequiresShipping     bool
	CreatedAt            time.Time
	ShippedAt            *time.Time
	DeliveredAt          *time.Time
	CanceledAt           *time.Time
}

// CardStatus is the derived status of a single fulfillment card.
type CardStatus struct {
	Badge
	// At is the timestamp of the marker that determined the status.
	At time.Time
	// CourierCollection is set for courier pickup fulfillments.
	CourierCollection bool
	// Pickup is set for any pickup fulfillment.
	Pickup bool
}

// Card derives a fulfillment card status. Markers are checked in fixed
// precedence: canceled, delivered, shipped, then the awaiting default.
func Card(m FulfillmentMarkers, courier Courier) CardStatus {
	collection := courier.Handles(m.ProviderID) && m.ShippingOptionTypeID == courier.PickupOptionType
	pickup := collection || strings.Contains(m.ShippingOptionTypeID, "pickup")

	out := CardStatus{
		Badge:             Badge{LabelKey: awaitingKey(m.RequiresShipping, collection, pickup), Color: ColorBlue},
		At:                m.CreatedAt,
		CourierCollection: collection,
		Pickup:            pickup,
	}

	switch {
	case m.CanceledAt != nil:
		out.Badge = Badge{LabelKey: "orders.fulfillment.status.canceled", Color: ColorRed}
		out.At = *m.CanceledAt
	case m.DeliveredAt != nil:
		out.Badge = Badge{LabelKey: "orders.fulfillment.status.delivered", Color: ColorGreen}
		out.At = *m.DeliveredAt
	case m.ShippedAt != nil:
		out.Badge = Badge{LabelKey: "orders.fulfillment.status.shipped", Color: ColorGreen}
		out.At = *m.ShippedAt
	}
	return out
}

func awaitingKey(requiresShipping, collection, pickup bool) string {
	if !requiresShipping {
		return "orders.fulfillment.status.awaitingDelivery"
	}
	switch {
	case collection:
		return "orders.fulfillment.status.awaitingCollection"
	case pickup:
		return "orders.fulfillment.status.awaitingPickup"
	default:
		return "orders.fulfillment.status.awaitingShipping"
	}
}

// CardActions lists which actions a fulfillment card offers.
type CardActions struct {
	CanShip    bool
	CanDeliver bool
	CanCancel  bool
	// CancelBlocked means cancel must be refused with a warning because the
	// fulfillment already shipped.
	CancelBlocked bool
	// PrintLabel is set when the courier can produce a shipping label.
	PrintLabel bool
}

// Actions derives the card actions for a fulfillment.
func Actions(m FulfillmentMarkers, courier Courier) CardActions {
	card := Card(m, courier)
	return CardActions{
		CanShip: m.CanceledAt == nil && m.ShippedAt == nil && m.DeliveredAt == nil &&
			m.RequiresShipping && !card.Pickup,
		CanDeliver:    m.CanceledAt == nil && m.DeliveredAt == nil,
		CanCancel:     m.CanceledAt == nil,
		CancelBlocked: m.ShippedAt != nil,
		PrintLabel:    courier.Handles(m.ProviderID),
	}
}

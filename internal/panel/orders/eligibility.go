package orders

import (
	"strings"

	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

// IsCollectionEligible reports whether the courier can be asked to collect o:
// the order is not canceled, at least one shippable item is unfulfilled, and
// the first shipping method belongs to the courier.
func IsCollectionEligible(o Order, courier status.Courier) bool {
	if o.IsCanceled() {
		return false
	}
	if len(o.ShippingMethods) == 0 || o.ShippingMethods[0].ShippingOption == nil {
		return false
	}
	if courier.ProviderKey == "" || !strings.Contains(o.ShippingMethods[0].ShippingOption.ProviderID, courier.ProviderKey) {
		return false
	}
	for _, item := range o.Items {
		if item.RequiresShipping && Remaining(item) > 0 {
			return true
		}
	}
	return false
}

// FilterCollectionEligible keeps the eligible orders in their original order.
func FilterCollectionEligible(list []Order, courier status.Courier) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		if IsCollectionEligible(o, courier) {
			out = append(out, o)
		}
	}
	return out
}

// IDs returns the order ids in list order.
func IDs(list []Order) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.ID)
	}
	return out
}

package orders

// Quantity returns the ordered quantity: quantity, then raw_quantity, then 0.
func Quantity(item LineItem) float64 {
	switch {
	case item.Quantity != nil:
		return item.Quantity.Float()
	case item.RawQuantity != nil:
		return item.RawQuantity.Float()
	}
	return 0
}

// FulfilledQuantity returns detail.fulfilled_quantity, then
// detail.raw_fulfilled_quantity, then 0.
func FulfilledQuantity(item LineItem) float64 {
	if item.Detail == nil {
		return 0
	}
	switch {
	case item.Detail.FulfilledQuantity != nil:
		return item.Detail.FulfilledQuantity.Float()
	case item.Detail.RawFulfilledQuantity != nil:
		return item.Detail.RawFulfilledQuantity.Float()
	}
	return 0
}

// Remaining is the quantity not yet attached to a fulfillment.
func Remaining(item LineItem) float64 {
	if r := Quantity(item) - FulfilledQuantity(item); r > 0 {
		return r
	}
	return 0
}

// IsUnfulfilled reports whether fulfilled < quantity.
func IsUnfulfilled(item LineItem) bool {
	return FulfilledQuantity(item) < Quantity(item)
}

// HasUnfulfilledItems reports whether any item still has quantity to fulfill.
func HasUnfulfilledItems(o Order) bool {
	for _, item := range o.Items {
		if IsUnfulfilled(item) {
			return true
		}
	}
	return false
}

// Breakdown groups unfulfilled items by whether they require shipping.
type Breakdown struct {
	WithShipping    []LineItem
	WithoutShipping []LineItem
}

// Empty reports whether nothing is left to fulfill.
func (b Breakdown) Empty() bool {
	return len(b.WithShipping) == 0 && len(b.WithoutShipping) == 0
}

// PartitionUnfulfilled splits the unfulfilled items of o. A canceled order
// has nothing to fulfill.
func PartitionUnfulfilled(o Order) Breakdown {
	var b Breakdown
	if o.IsCanceled() {
		return b
	}
	for _, item := range o.Items {
		if !IsUnfulfilled(item) {
			continue
		}
		if item.RequiresShipping {
			b.WithShipping = append(b.WithShipping, item)
		} else {
			b.WithoutShipping = append(b.WithoutShipping, item)
		}
	}
	return b
}

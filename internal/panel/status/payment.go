package status

// PaymentStatus is the order-level payment status code.
type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentAuthorized          PaymentStatus = "authorized"
	PaymentPartiallyAuthorized PaymentStatus = "partially_authorized"
	PaymentAwaiting            PaymentStatus = "awaiting"
	PaymentCaptured            PaymentStatus = "captured"
	PaymentRefunded            PaymentStatus = "refunded"
	PaymentPartiallyRefunded   PaymentStatus = "partially_refunded"
	PaymentPartiallyCaptured   PaymentStatus = "partially_captured"
	PaymentCanceled            PaymentStatus = "canceled"
	PaymentRequiresAction      PaymentStatus = "requires_action"
)

// PaymentStatuses lists every documented payment status code.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentPending,
		PaymentAuthorized,
		PaymentPartiallyAuthorized,
		PaymentAwaiting,
		PaymentCaptured,
		PaymentRefunded,
		PaymentPartiallyRefunded,
		PaymentPartiallyCaptured,
		PaymentCanceled,
		PaymentRequiresAction,
	}
}

// Payment maps an order payment status to its badge.
func Payment(s PaymentStatus) Badge {
	switch s {
	case PaymentPending:
		return Badge{LabelKey: "orders.status.pending", Color: ColorRed}
	case PaymentAuthorized:
		return Badge{LabelKey: "orders.payment.status.authorized", Color: ColorOrange}
	case PaymentPartiallyAuthorized:
		return Badge{LabelKey: "orders.payment.status.partiallyAuthorized", Color: ColorRed}
	case PaymentAwaiting:
		return Badge{LabelKey: "orders.payment.status.awaiting", Color: ColorOrange}
	case PaymentCaptured:
		return Badge{LabelKey: "orders.payment.status.captured", Color: ColorGreen}
	case PaymentRefunded:
		return Badge{LabelKey: "orders.payment.status.refunded", Color: ColorGreen}
	case PaymentPartiallyRefunded:
		return Badge{LabelKey: "orders.payment.status.partiallyRefunded", Color: ColorOrange}
	case PaymentPartiallyCaptured:
		return Badge{LabelKey: "orders.payment.status.partiallyCaptured", Color: ColorOrange}
	case PaymentCanceled:
		return Badge{LabelKey: "orders.payment.status.canceled", Color: ColorRed}
	case PaymentRequiresAction:
		return Badge{LabelKey: "orders.payment.status.requiresAction", Color: ColorOrange}
	default:
		return Fallback
	}
}

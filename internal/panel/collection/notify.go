package collection

import "strings"

// Tone values match the toast styles of the UI.
const (
	ToneSuccess = "success"
	ToneDanger  = "danger"
)

// Translator resolves message keys.
type Translator interface {
	T(key string, args ...any) string
}

// Notification is one toast to show after a collection request.
type Notification struct {
	Tone    string
	Message string
}

// Notifications returns a success toast counting the shipments (when any)
// followed by one error toast per failed order, formatted "order_id: message".
func Notifications(r Result, tr Translator) []Notification {
	out := make([]Notification, 0, 1+len(r.Errors))
	if n := len(r.Shipments); n > 0 {
		out = append(out, Notification{
			Tone:    ToneSuccess,
			Message: tr.T("orders.postexCollection.toast.success", "count", n),
		})
	}
	for _, e := range r.Errors {
		out = append(out, Notification{Tone: ToneDanger, Message: e.OrderID + ": " + e.Message})
	}
	return out
}

// ResolveLabelURL joins a label path onto the public backend URL with its
// trailing slash stripped. Absolute URLs are returned unchanged.
func ResolveLabelURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + path
}

// LabelURLs resolves every shipment's label URL, skipping empty ones.
func LabelURLs(r Result, base string) []string {
	out := make([]string, 0, len(r.Shipments))
	for _, s := range r.Shipments {
		if u := ResolveLabelURL(base, s.LabelURL); u != "" {
			out = append(out, u)
		}
	}
	return out
}

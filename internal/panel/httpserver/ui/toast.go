package ui

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MKdir98/vendor-panel/internal/panel/collection"
)

const (
	toneSuccess = collection.ToneSuccess
	toneDanger  = collection.ToneDanger
	toneWarning = "warning"
)

type toast struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}

// addToasts appends toasts to the HX-Trigger "toast" event, keeping any
// other events already set on the response.
func addToasts(w http.ResponseWriter, toasts ...toast) {
	if len(toasts) == 0 {
		return
	}
	const headerName = "HX-Trigger"

	events := map[string]json.RawMessage{}
	var existing []toast
	if raw := strings.TrimSpace(w.Header().Get(headerName)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &events); err != nil {
			events = map[string]json.RawMessage{}
			for _, name := range strings.Split(raw, ",") {
				if name = strings.TrimSpace(name); name != "" {
					events[name] = json.RawMessage("null")
				}
			}
		}
		if prev, ok := events["toast"]; ok {
			var one toast
			if err := json.Unmarshal(prev, &existing); err != nil {
				if err := json.Unmarshal(prev, &one); err == nil && one.Message != "" {
					existing = []toast{one}
				}
			}
		}
	}

	payload, err := json.Marshal(append(existing, toasts...))
	if err != nil {
		return
	}
	events["toast"] = payload
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set(headerName, string(data))
}

func notificationToasts(list []collection.Notification) []toast {
	out := make([]toast, 0, len(list))
	for _, n := range list {
		out = append(out, toast{Message: n.Message, Tone: n.Tone})
	}
	return out
}

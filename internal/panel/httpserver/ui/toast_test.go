package ui

import (
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/collection"
)

func decodeTrigger(t *testing.T, raw string) (map[string]json.RawMessage, []toast) {
	t.Helper()

	events := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(raw), &events))
	var toasts []toast
	if payload, ok := events["toast"]; ok {
		require.NoError(t, json.Unmarshal(payload, &toasts))
	}
	return events, toasts
}

func TestAddToastsWritesTrigger(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	addToasts(rec, toast{Message: "saved", Tone: toneSuccess})

	_, toasts := decodeTrigger(t, rec.Header().Get("HX-Trigger"))
	require.Equal(t, []toast{{Message: "saved", Tone: "success"}}, toasts)
}

func TestAddToastsAppendsToExistingToasts(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	addToasts(rec, toast{Message: "one", Tone: toneSuccess})
	addToasts(rec, toast{Message: "two", Tone: toneDanger}, toast{Message: "three", Tone: toneWarning})

	_, toasts := decodeTrigger(t, rec.Header().Get("HX-Trigger"))
	require.Len(t, toasts, 3)
	require.Equal(t, "two", toasts[1].Message)
	require.Equal(t, "warning", toasts[2].Tone)
}

func TestAddToastsKeepsOtherEvents(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rec.Header().Set("HX-Trigger", `{"refresh-orders":{"id":"o1"},"toast":{"message":"first","tone":"success"}}`)
	addToasts(rec, toast{Message: "second", Tone: toneDanger})

	events, toasts := decodeTrigger(t, rec.Header().Get("HX-Trigger"))
	require.Contains(t, events, "refresh-orders")
	require.JSONEq(t, `{"id":"o1"}`, string(events["refresh-orders"]))
	require.Equal(t, []toast{{Message: "first", Tone: "success"}, {Message: "second", Tone: "danger"}}, toasts)
}

func TestAddToastsConvertsEventNameList(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rec.Header().Set("HX-Trigger", "closeModal, refresh")
	addToasts(rec, toast{Message: "done", Tone: toneSuccess})

	events, toasts := decodeTrigger(t, rec.Header().Get("HX-Trigger"))
	require.Contains(t, events, "closeModal")
	require.Contains(t, events, "refresh")
	require.Len(t, toasts, 1)
}

func TestAddToastsWithoutToastsLeavesHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	addToasts(rec)
	require.Empty(t, rec.Header().Get("HX-Trigger"))
}

func TestNotificationToasts(t *testing.T) {
	t.Parallel()

	got := notificationToasts([]collection.Notification{
		{Tone: collection.ToneSuccess, Message: "2 shipments created"},
		{Tone: collection.ToneDanger, Message: "order_2: no address"},
	})
	require.Equal(t, []toast{
		{Message: "2 shipments created", Tone: "success"},
		{Message: "order_2: no address", Tone: "danger"},
	}, got)
}

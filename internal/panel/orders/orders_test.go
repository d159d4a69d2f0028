package orders

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

func decodeOrder(t *testing.T, raw string) Order {
	t.Helper()
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	return o
}

func TestHasUnfulfilledItems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "partially fulfilled", raw: `{"items":[{"quantity":2,"detail":{"fulfilled_quantity":1}}]}`, want: true},
		{name: "fully fulfilled", raw: `{"items":[{"quantity":2,"detail":{"fulfilled_quantity":2}}]}`, want: false},
		{name: "raw string quantity without detail", raw: `{"items":[{"raw_quantity":"3"}]}`, want: true},
		{name: "raw fulfilled fallback", raw: `{"items":[{"quantity":3,"detail":{"raw_fulfilled_quantity":{"value":"3","precision":20}}}]}`, want: false},
		{name: "null quantity falls through", raw: `{"items":[{"quantity":null,"raw_quantity":1,"detail":{"fulfilled_quantity":null}}]}`, want: true},
		{name: "no items", raw: `{}`, want: false},
		{name: "nothing known", raw: `{"items":[{}]}`, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, HasUnfulfilledItems(decodeOrder(t, tc.raw)))
		})
	}
}

func TestAmountRejectsGarbage(t *testing.T) {
	t.Parallel()

	var a Amount
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
	require.NoError(t, json.Unmarshal([]byte(`""`), &a))
	require.Zero(t, a.Float())
}

func TestPartitionUnfulfilled(t *testing.T) {
	t.Parallel()

	o := decodeOrder(t, `{"status":"pending","items":[
		{"id":"a","quantity":2,"requires_shipping":true,"detail":{"fulfilled_quantity":1}},
		{"id":"b","quantity":1,"requires_shipping":false},
		{"id":"c","quantity":1,"requires_shipping":true,"detail":{"fulfilled_quantity":1}}
	]}`)

	b := PartitionUnfulfilled(o)
	require.Len(t, b.WithShipping, 1)
	require.Equal(t, "a", b.WithShipping[0].ID)
	require.Equal(t, 1.0, Remaining(b.WithShipping[0]))
	require.Len(t, b.WithoutShipping, 1)
	require.Equal(t, "b", b.WithoutShipping[0].ID)

	o.Status = status.OrderCanceled
	require.True(t, PartitionUnfulfilled(o).Empty())
}

func TestIsCollectionEligible(t *testing.T) {
	t.Parallel()

	base := func() Order {
		return decodeOrder(t, `{"id":"o1","status":"pending",
			"items":[{"quantity":1,"requires_shipping":true}],
			"shipping_methods":[{"shipping_option":{"provider_id":"postex_postex"}}]}`)
	}

	require.True(t, IsCollectionEligible(base(), status.DefaultCourier))

	canceled := base()
	canceled.Status = status.OrderCanceled
	require.False(t, IsCollectionEligible(canceled, status.DefaultCourier))

	otherCourier := base()
	otherCourier.ShippingMethods[0].ShippingOption.ProviderID = "manual_manual"
	require.False(t, IsCollectionEligible(otherCourier, status.DefaultCourier))

	noShipping := base()
	noShipping.Items[0].RequiresShipping = false
	require.False(t, IsCollectionEligible(noShipping, status.DefaultCourier))

	fulfilled := base()
	one := Amount(1)
	fulfilled.Items[0].Detail = &LineItemDetail{FulfilledQuantity: &one}
	require.False(t, IsCollectionEligible(fulfilled, status.DefaultCourier))

	noMethods := base()
	noMethods.ShippingMethods = nil
	require.False(t, IsCollectionEligible(noMethods, status.DefaultCourier))

	list := FilterCollectionEligible([]Order{base(), canceled, otherCourier}, status.DefaultCourier)
	require.Equal(t, []string{"o1"}, IDs(list))
}

func TestOrderHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1052", Order{ID: "order_0123456789", DisplayID: 1052}.Number())
	require.Equal(t, "order_01", Order{ID: "order_0123456789"}.Number())
	require.Equal(t, "IRR", Order{}.Currency())
	require.Equal(t, "EUR", Order{CurrencyCode: "eur"}.Currency())

	_, ok := Label{TrackingNumber: "1", TrackingURL: "#"}.Link()
	require.False(t, ok)
	link, ok := Label{TrackingNumber: "1", URL: "https://t.example/1"}.Link()
	require.True(t, ok)
	require.Equal(t, "https://t.example/1", link)

	f := Fulfillment{FulfillmentItems: []FulfillmentItem{{Title: "x"}}}
	require.Len(t, f.LineItems(), 1)
}

func TestSplitPayment(t *testing.T) {
	t.Parallel()

	p := SplitPayment{AuthorizedAmount: 100, CapturedAmount: 60, Status: status.PaymentPartiallyRefunded}
	require.Equal(t, 40.0, p.Pending())
	require.True(t, p.ShowRefunded())
	require.True(t, p.ShowPending(Order{Status: status.OrderPending}))
	require.False(t, p.ShowPending(Order{Status: status.OrderCanceled}))
	require.False(t, SplitPayment{AuthorizedAmount: 5, CapturedAmount: 5}.ShowPending(Order{}))
}

func TestHTTPServiceGet(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vendor/orders/ord_1":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			require.Equal(t, DetailFields, r.URL.Query().Get("fields"))
			_, _ = io.WriteString(w, `{"order":{"id":"ord_1","display_id":7,"total":{"value":"1200"},"items":[{"quantity":"2"}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Order not found"}`)
		}
	}))
	t.Cleanup(ts.Close)

	client, err := backend.New(ts.URL, backend.Options{HTTPClient: ts.Client()})
	require.NoError(t, err)
	svc, err := NewHTTPService(client)
	require.NoError(t, err)

	o, err := svc.Get(context.Background(), "tok", "ord_1")
	require.NoError(t, err)
	require.Equal(t, 7, o.DisplayID)
	require.Equal(t, 1200.0, o.Total.Float())
	require.Equal(t, 2.0, Quantity(o.Items[0]))

	_, err = svc.Get(context.Background(), "tok", "missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestHTTPServiceMutationsAndLabel(t *testing.T) {
	t.Parallel()

	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/postex-label") {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "%PDF")
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(ts.Close)

	client, err := backend.New(ts.URL, backend.Options{HTTPClient: ts.Client()})
	require.NoError(t, err)
	svc, err := NewHTTPService(client)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.CancelFulfillment(ctx, "tok", "ord_1", "ful_1"))
	require.NoError(t, svc.MarkShipped(ctx, "tok", "ord_1", "ful_1", []FulfillmentItem{{LineItemID: "item_1", Quantity: 2}}))
	require.NoError(t, svc.MarkDelivered(ctx, "tok", "ord_1", "ful_1"))
	body, contentType, err := svc.Label(ctx, "tok", "ord_1", "ful_1")
	require.NoError(t, err)
	defer body.Close()
	require.Equal(t, "application/pdf", contentType)

	require.Equal(t, []string{
		"POST /vendor/orders/ord_1/fulfillments/ful_1/cancel",
		"POST /vendor/orders/ord_1/fulfillments/ful_1/shipments",
		"POST /vendor/orders/ord_1/fulfillments/ful_1/mark-as-delivered",
		"GET /vendor/orders/ord_1/fulfillments/ful_1/postex-label",
	}, paths)
}

func TestStaticServiceMutations(t *testing.T) {
	t.Parallel()

	svc := NewStaticServiceWith(SampleOrders(time.Now())...)
	ctx := context.Background()

	require.NoError(t, svc.MarkShipped(ctx, "", "order_01JAXK4B2R", "ful_01", nil))
	require.NoError(t, svc.MarkDelivered(ctx, "", "order_01JAXK4B2R", "ful_01"))
	o, err := svc.Get(ctx, "", "order_01JAXK4B2R")
	require.NoError(t, err)
	require.NotNil(t, o.Fulfillments[0].DeliveredAt)

	err = svc.CancelFulfillment(ctx, "", "order_01JAXK5C9S", "ful_02")
	require.True(t, errors.Is(err, ErrAlreadyShipped))

	_, err = svc.Get(ctx, "", "nope")
	require.True(t, errors.Is(err, ErrNotFound))
	require.Equal(t, []string{"ship:order_01JAXK4B2R/ful_01", "deliver:order_01JAXK4B2R/ful_01"}, svc.Calls)
}

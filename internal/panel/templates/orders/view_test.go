package orders

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	panelorders "github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

func sampleInput(t *testing.T, id string) DetailInput {
	t.Helper()
	catalog, err := i18n.Load(i18n.Persian)
	require.NoError(t, err)

	var order panelorders.Order
	for _, o := range panelorders.SampleOrders(time.Now()) {
		if o.ID == id {
			order = o
		}
	}
	require.NotEmpty(t, order.ID)

	locs := map[string]locations.StockLocation{}
	for _, l := range locations.SampleStockLocations() {
		locs[l.ID] = l
	}
	return DetailInput{L: catalog.Localizer(i18n.English), Order: order, Locations: locs, Courier: status.DefaultCourier, BasePath: "/panel"}
}

func render(t *testing.T, data DetailData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	chrome := layout.Chrome{L: data.L, BasePath: "/panel", CSRFToken: "tok"}
	require.NoError(t, Detail(chrome, data).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestDetailPartiallyFulfilledOrder(t *testing.T) {
	t.Parallel()

	in := sampleInput(t, "order_01JAXK4B2R")
	data := BuildDetail(in)
	doc := render(t, data)

	require.Equal(t, "Order #1053", doc.Find("h1").First().Text())
	require.Equal(t, 0, doc.Find(`[data-testid="order-status"]`).Length())
	require.Equal(t, 1, doc.Find(`[data-testid="payment-pending"]`).Length())
	require.Equal(t, 0, doc.Find(`[data-testid="payment-refunded"]`).Length())

	// dafter has two of three left
	remaining := doc.Find(`section.unfulfilled [data-testid="remaining"]`)
	require.Equal(t, 1, remaining.Length())
	require.Equal(t, "2x", remaining.Text())

	card := doc.Find(`section.fulfillment[data-fulfillment-id="ful_01"]`)
	require.Equal(t, "Awaiting Postex collection", card.Find(`[data-testid="fulfillment-card-status"]`).Text())
	require.Equal(t, "انبار مرکزی تهران", card.Find(`[data-testid="shipping-from"]`).Text())
	require.Equal(t, "Postex", card.Find(`[data-testid="provider"]`).Text())
	require.Equal(t, "https://postex.ir/tracking/PX-884201", card.Find(".labels a").AttrOr("href", ""))

	require.Equal(t, 0, card.Find(`[data-action="ship"]`).Length())
	require.Equal(t, "Mark as picked up", card.Find(`[data-action="deliver"]`).Text())
	require.Equal(t, "/panel/orders/order_01JAXK4B2R/fulfillments/ful_01/label", card.Find(`[data-action="print-label"]`).AttrOr("href", ""))
	_, confirm := card.Find(`[data-action="cancel"]`).Attr("hx-confirm")
	require.True(t, confirm)
}

func TestDetailDeliveredFulfillment(t *testing.T) {
	t.Parallel()

	in := sampleInput(t, "order_01JAXK5C9S")
	doc := render(t, BuildDetail(in))

	require.Equal(t, "Completed", doc.Find(`[data-testid="order-status"]`).Text())
	require.Equal(t, 0, doc.Find("section.unfulfilled").Length())

	card := doc.Find(`section.fulfillment[data-fulfillment-id="ful_02"]`)
	require.Equal(t, "Delivered", card.Find(`[data-testid="fulfillment-card-status"]`).Text())
	require.Equal(t, 0, card.Find(`[data-action="deliver"]`).Length())
	require.Equal(t, 0, card.Find(`[data-action="print-label"]`).Length())
	require.Equal(t, 0, card.Find(".labels a").Length())
	require.Equal(t, "MN-1", card.Find(".labels span").Text())

	_, confirm := card.Find(`[data-action="cancel"]`).Attr("hx-confirm")
	require.False(t, confirm)
}

func TestSectionHidesUnfulfilledForCanceledOrder(t *testing.T) {
	t.Parallel()

	in := sampleInput(t, "order_01JAXK3M7Q")
	require.Len(t, BuildSection(in).Unfulfilled, 1)

	in.Order.Status = status.OrderCanceled
	require.Empty(t, BuildSection(in).Unfulfilled)
}

func TestPaymentRows(t *testing.T) {
	t.Parallel()

	in := sampleInput(t, "order_01JAXK3M7Q")
	in.Order.SplitPayment = &panelorders.SplitPayment{
		AuthorizedAmount: 1850000,
		CapturedAmount:   1850000,
		RefundedAmount:   50000,
		Status:           status.PaymentPartiallyRefunded,
	}
	payment := BuildDetail(in).Payment
	require.True(t, payment.HasSplit)
	require.True(t, payment.ShowRefund)
	require.False(t, payment.ShowPending)
	require.Equal(t, "1,850,000 IRR", payment.Captured)
	require.Equal(t, "50,000 IRR", payment.Refunded)

	in.Order.SplitPayment = nil
	require.False(t, BuildDetail(in).Payment.HasSplit)
}

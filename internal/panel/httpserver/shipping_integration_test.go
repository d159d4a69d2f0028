package httpserver_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/shipping"
	"github.com/MKdir98/vendor-panel/internal/panel/testutil"
)

const tehranOptionPath = "/locations/sloc_tehran/service-zones/serzo_tehran/shipping-options/new"

func newShippingServer(t *testing.T) (*shipping.StaticService, *testutil.Client) {
	t.Helper()

	service := shipping.NewStaticService()
	authn := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t,
		testutil.WithAuthenticator(authn),
		testutil.WithUI(ui.Dependencies{
			StockLocations: locations.NewStaticStockLocationService(locations.SampleStockLocations()...),
			References:     locations.NewStaticReferenceService(),
			Shipping:       service,
		}),
	)
	client := testutil.NewClient(t, ts)
	client.Headers.Set("Authorization", "Bearer "+authn.Token)
	return service, client
}

func optionLabels(sel *goquery.Selection) []string {
	var out []string
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		if opt.AttrOr("value", "") != "" {
			out = append(out, strings.TrimSpace(opt.Text()))
		}
	})
	return out
}

func validShippingOption() url.Values {
	return url.Values{
		"kind":                {"shipping"},
		"price_type":          {"flat"},
		"name":                {"ارسال پستکس"},
		"shipping_profile_id": {"sp_default"},
		"provider_id":         {"postex_postex"},
		"service_zone_id":     {"serzo_tehran"},
	}
}

func TestServiceZonesListsCreateLinks(t *testing.T) {
	t.Parallel()

	_, client := newShippingServer(t)

	resp := client.Get("/locations/sloc_tehran/service-zones")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	zone := doc.Find(`li[data-zone-id="serzo_tehran"]`)
	require.Equal(t, 1, zone.Length())
	require.Equal(t, tehranOptionPath, zone.Find(`[data-action="create-shipping"]`).AttrOr("href", ""))
	require.Equal(t, tehranOptionPath+"?kind=pickup", zone.Find(`[data-action="create-pickup"]`).AttrOr("href", ""))
	require.Equal(t, tehranOptionPath+"?is_return=true", zone.Find(`[data-action="create-return"]`).AttrOr("href", ""))

	resp = client.Get("/locations/sloc_missing/service-zones")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShippingOptionFormChoices(t *testing.T) {
	t.Parallel()

	_, client := newShippingServer(t)

	resp := client.Get(tehranOptionPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Contains(t, doc.Find("#shipping-option-form h1").Text(), "تهران")
	require.Equal(t, 1, doc.Find(`[data-testid="price-type"]`).Length())
	require.Equal(t, "flat", doc.Find(`input[name="price_type"][checked]`).AttrOr("value", ""))
	require.Equal(t, []string{"Postex", "Manual"}, optionLabels(doc.Find(`[data-testid="provider-select"]`)))
	require.Equal(t, []string{"پیش‌فرض", "شکستنی"}, optionLabels(doc.Find(`[data-testid="profile-select"]`)))
	require.Equal(t, "serzo_tehran", selectedValue(doc.Find(`[data-testid="zone-select"]`)))

	resp = client.Get(tehranOptionPath + "?kind=pickup")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = testutil.ParseHTML(t, resp.Body)
	require.Equal(t, 0, doc.Find(`[data-testid="price-type"]`).Length())
	require.Equal(t, "pickup", doc.Find(`input[name="kind"]`).AttrOr("value", ""))

	resp = client.Get("/locations/sloc_tehran/service-zones/serzo_mars/shipping-options/new")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShippingOptionCreate(t *testing.T) {
	t.Parallel()

	service, client := newShippingServer(t)

	invalid := validShippingOption()
	invalid.Set("name", "")
	invalid.Set("provider_id", "dhl_dhl")
	resp := client.HTMX(http.MethodPost, tehranOptionPath, invalid)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, 1, doc.Find(".field-error").Length(), "choices are checked once the form validates")
	require.Empty(t, service.Created())

	invalid.Set("name", "ارسال پستکس")
	resp = client.HTMX(http.MethodPost, tehranOptionPath, invalid)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Empty(t, service.Created())

	resp = client.HTMX(http.MethodPost, tehranOptionPath, validShippingOption())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []triggeredToast{{Message: "Shipping option created", Tone: "success"}}, toastsFrom(t, resp))
	doc = testutil.ParseHTML(t, resp.Body)
	require.Empty(t, doc.Find(`input[name="name"]`).AttrOr("value", ""), "form resets after create")

	created := service.Created()
	require.Len(t, created, 1)
	require.Equal(t, "postex_postex", created[0].ProviderID)
	require.Equal(t, "serzo_tehran", created[0].ServiceZoneID)
	require.Equal(t, shipping.PriceTypeFlat, created[0].PriceType)

	resp = client.Post(tehranOptionPath, validShippingOption())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/locations/sloc_tehran/service-zones", resp.Header.Get("Location"))
	require.Len(t, service.Created(), 2)
}

package httpserver_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/catalog"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/testutil"
)

func newLocationsServer(t *testing.T) (*locations.StaticStockLocationService, *testutil.Client) {
	t.Helper()

	stock := locations.NewStaticStockLocationService(locations.SampleStockLocations()...)
	authn := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t,
		testutil.WithAuthenticator(authn),
		testutil.WithUI(ui.Dependencies{StockLocations: stock, References: locations.NewStaticReferenceService()}),
	)
	client := testutil.NewClient(t, ts)
	client.Headers.Set("Authorization", "Bearer "+authn.Token)
	return stock, client
}

func optionValues(sel *goquery.Selection) []string {
	var out []string
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		if v := opt.AttrOr("value", ""); v != "" {
			out = append(out, v)
		}
	})
	return out
}

func selectedValue(sel *goquery.Selection) string {
	return sel.Find("option[selected]").AttrOr("value", "")
}

func validLocationForm() url.Values {
	return url.Values{
		"name":         {"Isfahan store"},
		"address_1":    {"Chaharbagh St"},
		"country_code": {"ir"},
		"state_id":     {"state_isfahan"},
		"city_id":      {"city_kashan"},
	}
}

func TestLocationsList(t *testing.T) {
	t.Parallel()

	_, client := newLocationsServer(t)

	resp := client.Get("/locations")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, 1, doc.Find(`[data-location-id="sloc_tehran"]`).Length())
	require.Equal(t, "/locations/new", doc.Find(`[data-action="new-location"]`).AttrOr("href", ""))
}

func TestLocationNewFormDisablesCityUntilStateChosen(t *testing.T) {
	t.Parallel()

	_, client := newLocationsServer(t)

	resp := client.Get("/locations/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, []string{"state_tehran", "state_isfahan", "state_fars"}, optionValues(doc.Find(`[data-testid="state-select"]`)))
	_, disabled := doc.Find(`[data-testid="city-select"]`).Attr("disabled")
	require.True(t, disabled)
	require.Equal(t, "ir", doc.Find(`input[name="country_code"]`).AttrOr("value", ""))
}

func TestLocationCitiesFollowState(t *testing.T) {
	t.Parallel()

	_, client := newLocationsServer(t)

	resp := client.HTMX(http.MethodPost, "/locations/cities", url.Values{
		"country_code":  {"ir"},
		"prev_state_id": {"state_tehran"},
		"state_id":      {"state_isfahan"},
		"city_id":       {"city_tehran"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	citySelect := doc.Find(`#city-field [data-testid="city-select"]`)
	require.Equal(t, []string{"city_isfahan", "city_kashan"}, optionValues(citySelect))
	require.Empty(t, selectedValue(citySelect), "changing the province clears the city")
	require.Equal(t, "state_isfahan", doc.Find(`input[name="prev_state_id"]`).AttrOr("value", ""))

	resp = client.Post("/locations/cities", url.Values{"state_id": {"state_isfahan"}})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLocationCreateValidation(t *testing.T) {
	t.Parallel()

	stock, client := newLocationsServer(t)

	resp := client.HTMX(http.MethodPost, "/locations", url.Values{"country_code": {"ir"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, 1, doc.Find("#location-form").Length())
	require.GreaterOrEqual(t, doc.Find(".field-error").Length(), 3)

	form := validLocationForm()
	form.Set("city_id", "city_shiraz")
	resp = client.HTMX(http.MethodPost, "/locations", form)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	doc = testutil.ParseHTML(t, resp.Body)
	require.Equal(t, "Invalid choice", strings.TrimSpace(doc.Find("#city-field .field-error").Text()))

	list, err := stock.List(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestLocationCreate(t *testing.T) {
	t.Parallel()

	stock, client := newLocationsServer(t)

	resp := client.HTMX(http.MethodPost, "/locations", validLocationForm())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []triggeredToast{{Message: "Location created", Tone: "success"}}, toastsFrom(t, resp))

	pushed := resp.Header.Get("HX-Push-Url")
	require.True(t, strings.HasPrefix(pushed, "/locations/sloc_"), pushed)
	require.True(t, strings.HasSuffix(pushed, "/edit"), pushed)

	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, "state_isfahan", selectedValue(doc.Find(`[data-testid="state-select"]`)))
	require.Equal(t, "city_kashan", selectedValue(doc.Find(`[data-testid="city-select"]`)))

	list, err := stock.List(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	var created locations.StockLocation
	for _, loc := range list {
		if loc.ID != "sloc_tehran" {
			created = loc
		}
	}
	require.Equal(t, "Isfahan store", created.Name)
	require.Equal(t, "city_kashan", created.Address.CityID)
	require.Equal(t, "کاشان", created.Address.City)
	require.Equal(t, "اصفهان", created.Address.Province)
}

func TestLocationCreateWithoutHTMXRedirectsToEdit(t *testing.T) {
	t.Parallel()

	_, client := newLocationsServer(t)

	resp := client.Post("/locations", validLocationForm())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasSuffix(location, "/edit"), location)

	resp = client.Get(location)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLocationEditDerivesStateFromCity(t *testing.T) {
	t.Parallel()

	_, client := newLocationsServer(t)

	resp := client.Get("/locations/sloc_tehran/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, "state_tehran", selectedValue(doc.Find(`[data-testid="state-select"]`)))
	citySelect := doc.Find(`[data-testid="city-select"]`)
	require.Equal(t, "city_tehran", selectedValue(citySelect))
	_, disabled := citySelect.Attr("disabled")
	require.False(t, disabled)
}

func TestLocationEditUnknown(t *testing.T) {
	t.Parallel()

	_, client := newLocationsServer(t)

	resp := client.Get("/locations/sloc_missing/edit")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLocationUpdate(t *testing.T) {
	t.Parallel()

	stock, client := newLocationsServer(t)

	form := url.Values{
		"name":         {"Tehran hub"},
		"address_1":    {"Valiasr St"},
		"country_code": {"ir"},
		"state_id":     {"state_tehran"},
		"city_id":      {"city_shemiranat"},
	}
	resp := client.HTMX(http.MethodPost, "/locations/sloc_tehran", form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Location updated", toastsFrom(t, resp)[0].Message)
	require.Empty(t, resp.Header.Get("HX-Push-Url"))

	loc, err := stock.Get(t.Context(), "", "sloc_tehran")
	require.NoError(t, err)
	require.Equal(t, "Tehran hub", loc.Name)
	require.Equal(t, "شمیرانات", loc.Address.City)
}

func TestCategoryCreate(t *testing.T) {
	t.Parallel()

	service := catalog.NewStaticService()
	authn := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t,
		testutil.WithAuthenticator(authn),
		testutil.WithUI(ui.Dependencies{Categories: service}),
	)
	client := testutil.NewClient(t, ts)
	client.Headers.Set("Authorization", "Bearer "+authn.Token)

	resp := client.Get("/categories/new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, 1, doc.Find("#category-form").Length())

	resp = client.HTMX(http.MethodPost, "/categories", url.Values{
		"name": {""}, "handle": {"Bad Handle"}, "status": {"active"}, "visibility": {"public"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	doc = testutil.ParseHTML(t, resp.Body)
	require.Equal(t, 2, doc.Find(".field-error").Length())
	require.Empty(t, service.Created())

	resp = client.HTMX(http.MethodPost, "/categories", url.Values{
		"name": {"Mugs"}, "description": {"<b>Hand made</b><script>x()</script>"}, "status": {"active"}, "visibility": {"public"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []triggeredToast{{Message: "Category created", Tone: "success"}}, toastsFrom(t, resp))
	doc = testutil.ParseHTML(t, resp.Body)
	require.Empty(t, doc.Find(`input[name="name"]`).AttrOr("value", ""), "form resets after create")

	created := service.Created()
	require.Len(t, created, 1)
	require.Equal(t, "mugs", created[0].Handle)
	require.True(t, created[0].IsActive)
	require.NotContains(t, created[0].Description, "<script>")
}

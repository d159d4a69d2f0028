package httpserver_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/catalog"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
	"github.com/MKdir98/vendor-panel/internal/panel/testutil"
)

func newCategoriesServer(t *testing.T) (*catalog.StaticService, *testutil.Client) {
	t.Helper()

	service := catalog.NewStaticService(catalog.SampleCategories()...)
	authn := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t,
		testutil.WithAuthenticator(authn),
		testutil.WithUI(ui.Dependencies{Categories: service}),
	)
	client := testutil.NewClient(t, ts)
	client.Headers.Set("Authorization", "Bearer "+authn.Token)
	return service, client
}

func TestCategoryDetailGeneralSection(t *testing.T) {
	t.Parallel()

	_, client := newCategoriesServer(t)

	resp := client.Get("/categories/pcat_books")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	section := doc.Find("#category-general")
	require.Equal(t, "کتاب", strings.TrimSpace(section.Find("h1").Text()))
	require.Equal(t, "/books", strings.TrimSpace(section.Find(`[data-testid="category-handle"]`).Text()))
	require.Equal(t, 0, section.Find(`[data-testid="category-thumbnail"]`).Length())
	require.Contains(t, section.Find(`input[type="file"]`).AttrOr("accept", ""), "image/webp")

	resp = client.Get("/categories/pcat_missing")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryCreateRedirectsToDetail(t *testing.T) {
	t.Parallel()

	service, client := newCategoriesServer(t)

	resp := client.Post("/categories", url.Values{
		"name": {"Mugs"}, "status": {"active"}, "visibility": {"public"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	created := service.Created()
	require.Len(t, created, 1)
	require.Equal(t, "/categories/"+created[0].ID, resp.Header.Get("Location"))

	resp = client.Get(resp.Header.Get("Location"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, "-", strings.TrimSpace(doc.Find(`[data-testid="category-description"]`).Text()))
}

func TestCategoryImageUpload(t *testing.T) {
	t.Parallel()

	service, client := newCategoriesServer(t)

	resp := client.Upload("/categories/pcat_books/image", "file", "notes.txt", "text/plain", []byte("hello"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, []triggeredToast{{Message: "This file type is not supported", Tone: "danger"}}, toastsFrom(t, resp))
	require.Empty(t, service.Uploads())

	resp = client.Upload("/categories/pcat_books/image", "file", "cover.png", "image/png", []byte("\x89PNG\r\n"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []triggeredToast{{Message: "Category image updated", Tone: "success"}}, toastsFrom(t, resp))
	doc := testutil.ParseHTML(t, resp.Body)
	require.Equal(t, "https://cdn.example.ir/uploads/cover.png", doc.Find(`[data-testid="category-thumbnail"]`).AttrOr("src", ""))
	require.Equal(t, []string{"cover.png"}, service.Uploads())

	stored, err := service.Get(t.Context(), "test-token", "pcat_books")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.ir/uploads/cover.png", stored.Thumbnail())

	resp = client.Upload("/categories/pcat_missing/image", "file", "cover.png", "image/png", []byte("x"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package pages

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/content"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

func TestTermsPageIsBare(t *testing.T) {
	t.Parallel()

	catalog, err := i18n.Load(i18n.Persian)
	require.NoError(t, err)
	l := catalog.Localizer(i18n.Persian)

	body, err := content.Terms()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Terms(layout.Chrome{L: l}, TermsData{L: l, Body: body, HomeHref: "/"}).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	require.Equal(t, 0, doc.Find("header.topbar").Length())
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, 1, doc.Find(`[data-testid="terms"] h1`).Length())
	require.Equal(t, 1, doc.Find(`[data-testid="terms"] table`).Length())
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	catalog, err := i18n.Load(i18n.Persian)
	require.NoError(t, err)
	l := catalog.Localizer(i18n.English)

	var buf bytes.Buffer
	data := ErrorData{L: l, Status: http.StatusNotFound, Message: l.T("orders.detail.notFound"), HomeHref: "/"}
	require.NoError(t, Error(layout.Chrome{L: l, Environment: "Production"}, data).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	require.Equal(t, "404", doc.Find(".error-page").AttrOr("data-status", ""))
	require.Equal(t, "Order not found", doc.Find(`[data-testid="error-message"]`).Text())
	require.Equal(t, 0, doc.Find(".env-badge").Length())
}

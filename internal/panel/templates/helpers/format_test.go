package helpers

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1,250,000 IRR", Currency(1250000, "irr", "en"))
	require.Equal(t, "12.50 USD", Currency(12.5, "usd", "en"))
	require.Contains(t, Currency(1000, "IRR", "fa"), "ریال")
	require.Contains(t, Currency(1000, "IRT", "fa"), "تومان")
}

func TestNumber(t *testing.T) {
	t.Parallel()

	require.Equal(t, "3", Number(3, "en"))
	require.Equal(t, "1.50", Number(1.5, "en"))
}

func TestDate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "-", Date(time.Time{}))
	require.NotEmpty(t, Date(time.Now()))
}

func TestStatusBadgeClass(t *testing.T) {
	t.Parallel()

	require.Equal(t, "badge badge-danger", StatusBadgeClass(status.Badge{Color: status.ColorRed}))
	require.Equal(t, "badge badge-info", StatusBadgeClass(status.Badge{Color: status.ColorBlue}))
	require.Equal(t, "badge badge-warning", StatusBadgeClass(status.Fallback))
}

func TestTextComponentEscapes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, TextComponent("<b>x</b>").Render(context.Background(), &buf))
	require.Equal(t, "&lt;b&gt;x&lt;/b&gt;", buf.String())
}

// Package helpers holds formatting helpers shared by the view models.
package helpers

import (
	"context"
	"io"
	"math"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

// Currency formats a major-unit amount with grouping for lang. Rial and toman
// amounts have no fraction digits.
func Currency(amount float64, currency, lang string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	p := message.NewPrinter(tag(lang))

	var number string
	switch code {
	case "IRR", "IRT", "":
		number = p.Sprintf("%d", int64(math.Round(amount)))
	default:
		number = p.Sprintf("%.2f", amount)
	}
	return number + " " + currencyLabel(code, lang)
}

// Number formats n with grouping for lang.
func Number(n float64, lang string) string {
	p := message.NewPrinter(tag(lang))
	if n == math.Trunc(n) {
		return p.Sprintf("%d", int64(n))
	}
	return p.Sprintf("%.2f", n)
}

func currencyLabel(code, lang string) string {
	if lang == "fa" {
		switch code {
		case "IRR", "":
			return "ریال"
		case "IRT":
			return "تومان"
		}
	}
	if code == "" {
		return "IRR"
	}
	return code
}

// Date formats ts as a short date and time.
func Date(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.In(time.Local).Format("2006-01-02 15:04")
}

// BadgeClass maps semantic tones to utility classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success":
		return "badge badge-success"
	case "warning":
		return "badge badge-warning"
	case "danger":
		return "badge badge-danger"
	case "info":
		return "badge badge-info"
	default:
		return "badge"
	}
}

// StatusBadgeClass returns the classes for a status badge.
func StatusBadgeClass(b status.Badge) string {
	return BadgeClass(b.Tone())
}

// NavClass returns navigation link classes.
func NavClass(active bool) string {
	if active {
		return "nav-link nav-link-active"
	}
	return "nav-link"
}

// TextComponent returns a templ component that renders plain text.
func TextComponent(value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}

func tag(lang string) language.Tag {
	if lang == "fa" {
		return language.Persian
	}
	return language.English
}

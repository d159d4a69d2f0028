// Package provider turns opaque payment and fulfillment provider ids into
// human-readable labels.
package provider

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unknown is returned for empty provider ids.
const Unknown = "Unknown Provider"

// Format renders ids of the form <prefix>_<name>[-<variant>][_<type>], e.g.
// "pp_stripe-blik_dkk" becomes "Stripe Blik (DKK)". It never panics; malformed
// ids are returned unchanged.
func Format(id string) (label string) {
	if strings.TrimSpace(id) == "" {
		return Unknown
	}
	defer func() {
		if r := recover(); r != nil {
			label = id
		}
	}()

	parts := strings.Split(id, "_")
	if len(parts) < 2 {
		return capitalize(id)
	}

	name := parts[1]
	if name == "" {
		return id
	}

	words := strings.Split(name, "-")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	label = strings.Join(words, " ")
	if len(parts) > 2 && parts[2] != "" {
		label += " (" + strings.ToUpper(parts[2]) + ")"
	}
	return label
}

// FormatPtr formats a nullable id.
func FormatPtr(id *string) string {
	if id == nil {
		return Unknown
	}
	return Format(*id)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

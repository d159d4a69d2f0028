package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
)

type localeContextKey struct{}

// StorageHeader mirrors the browser's stored language preference; app.js
// sends it on every htmx request.
const StorageHeader = "X-Lng-Storage"

// Locale detects the UI language for each request and stores a Localizer on
// the context. A ?lng= query parameter overrides detection and persists the
// choice in the lng cookie and the session.
func Locale(catalog *i18n.Catalog, secure bool) func(http.Handler) http.Handler {
	if catalog == nil {
		panic("i18n catalog is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, hasSession := SessionFromContext(r.Context())

			cookie := ""
			if c, err := r.Cookie(i18n.CookieName); err == nil {
				cookie = c.Value
			}
			if override := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lng"))); override != "" && catalog.IsSupported(override) {
				cookie = override
				http.SetCookie(w, &http.Cookie{
					Name:     i18n.CookieName,
					Value:    override,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					Secure:   secure || r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
				if hasSession {
					sess.SetLocale(override)
				}
			}

			storage := r.Header.Get(StorageHeader)
			if storage == "" && hasSession {
				storage = sess.Locale()
			}

			lang := i18n.Detect(cookie, storage, r.Header.Get("Accept-Language"))
			ctx := WithLocalizer(r.Context(), catalog.Localizer(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLocalizer attaches l to ctx.
func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localeContextKey{}, l)
}

// LocalizerFromContext returns the request localizer, or nil when absent.
func LocalizerFromContext(ctx context.Context) *i18n.Localizer {
	l, _ := ctx.Value(localeContextKey{}).(*i18n.Localizer)
	return l
}

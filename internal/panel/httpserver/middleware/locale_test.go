package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
)

func TestLocaleMiddleware(t *testing.T) {
	catalog, err := i18n.Load(i18n.Persian)
	require.NoError(t, err)

	var got string
	handler := Locale(catalog, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocalizerFromContext(r.Context()).Lang()
	}))

	tests := []struct {
		name    string
		cookie  string
		storage string
		accept  string
		query   string
		want    string
	}{
		{name: "default is persian", accept: "en-US,en;q=0.9", want: "fa"},
		{name: "cookie wins", cookie: "en", storage: "fa", want: "en"},
		{name: "storage header", storage: "en", want: "en"},
		{name: "unsupported preference falls to navigator", cookie: "de", accept: "en-GB", want: "en"},
		{name: "query override", cookie: "fa", query: "en", want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := "/"
			if tc.query != "" {
				target += "?lng=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: i18n.CookieName, Value: tc.cookie})
			}
			if tc.storage != "" {
				req.Header.Set(StorageHeader, tc.storage)
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, tc.want, got)
			if tc.query != "" {
				c := findCookie(rr.Result().Cookies(), i18n.CookieName)
				require.NotNil(t, c)
				require.Equal(t, tc.query, c.Value)
			}
		})
	}
}

func TestLocaleOverridePersistsInSession(t *testing.T) {
	catalog, err := i18n.Load(i18n.Persian)
	require.NoError(t, err)
	clock := &sessionTestClock{now: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	store := newSessionStoreForTest(t, clock)

	var got string
	handler := Session(store)(Locale(catalog, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocalizerFromContext(r.Context()).Lang()
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lng=en", nil))
	sessionCookie := findCookie(rr.Result().Cookies(), "test_session")
	require.NotNil(t, sessionCookie)

	// no lng cookie: the session locale acts as the stored preference
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "en", got)
}

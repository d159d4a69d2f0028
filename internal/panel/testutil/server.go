package testutil

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/MKdir98/vendor-panel/internal/panel/auth"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
)

const (
	// SellerEmail and SellerPassword sign in against the default auth service.
	SellerEmail    = "seller@example.ir"
	SellerPassword = "secret"
	// CSRFToken is the token test clients present as cookie and header.
	CSRFToken = "test-csrf-token"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator overrides the authenticator used by the panel.
func WithAuthenticator(a middleware.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = a
	}
}

// WithBasePath sets a custom base path for the panel routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithAuthService wires a custom sign-in and registration service.
func WithAuthService(service auth.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Auth = service
	}
}

// WithUI replaces the page handler dependencies.
func WithUI(deps ui.Dependencies) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.UI = deps
	}
}

// WithLoginRate caps login posts per client per minute.
func WithLoginRate(perMinute int) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.LoginRate = perMinute
	}
}

// SellerToken returns an unsigned-for-verification seller JWT carrying the
// claims the panel reads.
func SellerToken(t testing.TB, actorID, email string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"actor_id":   actorID,
		"actor_type": "seller",
		"email":      email,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// NewServer constructs an httptest server running the panel HTTP stack with
// in-memory services.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/",
		Environment:    "Test",
		CSRFCookieName: "vendor_csrf",
		Authenticator:  middleware.NewTokenAuthenticator("seller", time.Now),
		Auth: auth.NewStaticService(map[string]string{SellerEmail: SellerPassword}, func(email string) string {
			return SellerToken(t, "seller_01", email)
		}),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Client is a cookie-keeping browser stand-in that never follows redirects.
type Client struct {
	t       testing.TB
	base    string
	HTTP    *http.Client
	Headers http.Header
}

// NewClient returns a Client for ts. Requests carry lng=en so assertions can
// match English copy.
func NewClient(t testing.TB, ts *httptest.Server) *Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	jar.SetCookies(u, []*http.Cookie{
		{Name: "vendor_csrf", Value: CSRFToken, Path: "/"},
		{Name: "lng", Value: "en", Path: "/"},
	})
	return &Client{
		t:    t,
		base: ts.URL,
		HTTP: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Headers: http.Header{},
	}
}

// Get issues a GET for path.
func (c *Client) Get(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil, false)
}

// Post submits form to path with a valid CSRF token.
func (c *Client) Post(path string, form url.Values) *Response {
	c.t.Helper()
	return c.Do(http.MethodPost, path, form, false)
}

// HTMX submits form as an htmx request.
func (c *Client) HTMX(method, path string, form url.Values) *Response {
	c.t.Helper()
	return c.Do(method, path, form, true)
}

// Do sends a request and reads the whole response body.
func (c *Client) Do(method, path string, form url.Values, htmx bool) *Response {
	c.t.Helper()

	var body io.Reader
	contentType := ""
	if form != nil {
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}
	return c.send(method, path, body, contentType, htmx)
}

// Upload posts a single file as multipart form data through htmx.
func (c *Client) Upload(path, field, filename, contentType string, data []byte) *Response {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		c.t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		c.t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		c.t.Fatalf("close multipart: %v", err)
	}
	return c.send(http.MethodPost, path, &buf, mw.FormDataContentType(), true)
}

func (c *Client) send(method, path string, body io.Reader, contentType string, htmx bool) *Response {
	c.t.Helper()

	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, vs := range c.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", CSRFToken)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return &Response{Response: resp, Body: payload}
}

// SignIn posts the default seller credentials and fails the test unless
// the panel redirects.
func (c *Client) SignIn() {
	c.t.Helper()

	resp := c.Post("/login", url.Values{"email": {SellerEmail}, "password": {SellerPassword}})
	if resp.StatusCode != http.StatusSeeOther {
		c.t.Fatalf("sign in: status %d: %s", resp.StatusCode, resp.Body)
	}
}

// Response is a fully read HTTP response.
type Response struct {
	*http.Response
	Body []byte
}

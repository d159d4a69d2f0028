package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

func newHTTPService(t *testing.T, handler http.HandlerFunc) *HTTPService {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client, err := backend.New(ts.URL, backend.Options{HTTPClient: ts.Client()})
	require.NoError(t, err)
	svc, err := NewHTTPService(client)
	require.NoError(t, err)
	return svc
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/seller/emailpass", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		var body credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type":"unauthorized","message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"jwt-token"}`))
	})

	token, err := svc.SignIn(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "jwt-token", token)

	_, err = svc.SignIn(context.Background(), "a@example.com", "wrong")
	require.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestSignInServerError(t *testing.T) {
	t.Parallel()

	svc := newHTTPService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := svc.SignIn(context.Background(), "a@example.com", "secret")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestRegisterCreatesSellerWithIdentityToken(t *testing.T) {
	t.Parallel()

	var sellerAuth string
	var seller map[string]any
	svc := newHTTPService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/seller/emailpass/register":
			_, _ = w.Write([]byte(`{"token":"registration-token"}`))
		case "/vendor/sellers":
			sellerAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&seller))
			_, _ = w.Write([]byte(`{"seller":{"id":"sel_1"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	err := svc.Register(context.Background(), Registration{Name: "فروشگاه", Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "Bearer registration-token", sellerAuth)
	require.Equal(t, "فروشگاه", seller["name"])
	require.Equal(t, "b@example.com", seller["member"].(map[string]any)["email"])
}

func TestRegisterExistingIdentity(t *testing.T) {
	t.Parallel()

	svc := newHTTPService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Identity with email already exists"}`))
	})
	err := svc.Register(context.Background(), Registration{Name: "x", Email: "b@example.com", Password: "pw"})
	require.True(t, errors.Is(err, ErrEmailTaken))
	require.Equal(t, "Identity with email already exists", backend.MessageOf(err))
}

func TestLoginFormValidate(t *testing.T) {
	t.Parallel()

	errs := LoginFormFromValues(url.Values{"email": {"not-an-email"}}).Validate()
	require.Equal(t, FieldErrors{"email": "validation.emailInvalid", "password": "validation.passwordRequired"}, errs)

	form := LoginFormFromValues(url.Values{"email": {" a@example.com "}, "password": {"x"}, "remember": {"on"}})
	require.Empty(t, form.Validate())
	require.Equal(t, "a@example.com", form.Email)
	require.True(t, form.Remember)
}

func TestRegisterFormValidate(t *testing.T) {
	t.Parallel()

	errs := RegisterFormFromValues(url.Values{"name": {"x"}, "email": {"b@example.com"}, "password": {"pw"}, "confirm_password": {"pw"}}).Validate()
	require.Equal(t, FieldErrors{"name": "validation.nameRequired"}, errs)

	errs = RegisterFormFromValues(url.Values{"name": {"فروشگاه"}, "email": {"b@example.com"}, "password": {"pw1"}, "confirm_password": {"pw2"}}).Validate()
	require.Equal(t, "validation.passwordMismatch", errs["password"])
	require.Equal(t, "validation.passwordMismatch", errs["confirm_password"])

	form := RegisterFormFromValues(url.Values{"name": {"فروشگاه"}, "email": {"b@example.com"}, "password": {"pw"}, "confirm_password": {"pw"}})
	require.Empty(t, form.Validate())
	require.Equal(t, "b@example.com", form.Registration().Email)
}

func TestStaticService(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(map[string]string{"Seller@Example.com": "pw"}, nil)
	ctx := context.Background()

	token, err := svc.SignIn(ctx, "seller@example.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	_, err = svc.SignIn(ctx, "seller@example.com", "bad")
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	require.True(t, errors.Is(svc.Register(ctx, Registration{Email: "seller@example.com"}), ErrEmailTaken))
	require.NoError(t, svc.Register(ctx, Registration{Email: "new@example.com", Password: "pw"}))
}

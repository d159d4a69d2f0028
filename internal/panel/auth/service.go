// Package auth signs sellers in and registers new sellers against the
// backend's email/password provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

var (
	// ErrInvalidCredentials is returned when the backend rejects the email/password pair.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrEmailTaken is returned when registering an email that already has an identity.
	ErrEmailTaken = errors.New("auth: email already registered")
)

// Registration is a new seller account request.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Service authenticates sellers.
type Service interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, reg Registration) error
}

// HTTPService implements Service over the backend auth routes.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs an HTTPService.
func NewHTTPService(client *backend.Client) (*HTTPService, error) {
	if client == nil {
		return nil, errors.New("auth: backend client is required")
	}
	return &HTTPService{client: client}, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// SignIn exchanges credentials for a backend token.
func (s *HTTPService) SignIn(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	err := s.client.SendJSON(ctx, "auth.sign_in", http.MethodPost, "", "/auth/seller/emailpass", credentials{Email: email, Password: password}, &out)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", errors.New("auth: backend returned an empty token")
	}
	return out.Token, nil
}

// Register creates the auth identity and then the seller it belongs to.
func (s *HTTPService) Register(ctx context.Context, reg Registration) error {
	var identity tokenResponse
	err := s.client.SendJSON(ctx, "auth.register", http.MethodPost, "", "/auth/seller/emailpass/register",
		credentials{Email: reg.Email, Password: reg.Password}, &identity)
	if err != nil {
		if backend.StatusOf(err) == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return err
	}

	seller := map[string]any{
		"name": reg.Name,
		"member": map[string]string{
			"name":  reg.Name,
			"email": reg.Email,
		},
	}
	if err := s.client.SendJSON(ctx, "auth.create_seller", http.MethodPost, identity.Token, "/vendor/sellers", seller, nil); err != nil {
		return fmt.Errorf("auth: create seller: %w", err)
	}
	return nil
}

// StaticService accepts a fixed set of accounts for local development.
type StaticService struct {
	mu       sync.Mutex
	accounts map[string]string
	// TokenFor issues the token returned on sign-in.
	TokenFor func(email string) string
}

// NewStaticService returns a StaticService holding email/password pairs.
func NewStaticService(accounts map[string]string, tokenFor func(email string) string) *StaticService {
	copied := make(map[string]string, len(accounts))
	for k, v := range accounts {
		copied[strings.ToLower(k)] = v
	}
	return &StaticService{accounts: copied, TokenFor: tokenFor}
}

// SignIn implements Service.
func (s *StaticService) SignIn(_ context.Context, email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[strings.ToLower(email)]
	if !ok || stored != password {
		return "", ErrInvalidCredentials
	}
	if s.TokenFor == nil {
		return "static-token", nil
	}
	return s.TokenFor(email), nil
}

// Register implements Service.
func (s *StaticService) Register(_ context.Context, reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(reg.Email)
	if _, ok := s.accounts[key]; ok {
		return ErrEmailTaken
	}
	s.accounts[key] = reg.Password
	return nil
}

package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrTokenExpired is returned when the backend token has expired.
var ErrTokenExpired = errors.New("backend token expired")

// TokenAuthenticator reads the backend-issued JWT. The signature is verified
// by the backend on every call, so only the claims are inspected here.
type TokenAuthenticator struct {
	parser    *jwt.Parser
	actorType string
	now       func() time.Time
}

// NewTokenAuthenticator returns an authenticator accepting tokens of actorType
// (e.g. "seller"). An empty actorType accepts any actor.
func NewTokenAuthenticator(actorType string, now func() time.Time) *TokenAuthenticator {
	if now == nil {
		now = time.Now
	}
	return &TokenAuthenticator{parser: jwt.NewParser(), actorType: actorType, now: now}
}

// Authenticate decodes token and maps its claims onto a User.
func (a *TokenAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}

	claims := jwt.MapClaims{}
	if _, _, err := a.parser.ParseUnverified(token, claims); err != nil {
		return nil, NewAuthError(ReasonTokenInvalid, err)
	}
	if !claims.VerifyExpiresAt(a.now().Unix(), false) {
		return nil, NewAuthError(ReasonTokenExpired, ErrTokenExpired)
	}

	actorID := claimString(claims["actor_id"])
	if actorID == "" {
		return nil, NewAuthError(ReasonTokenInvalid, errors.New("actor_id claim missing"))
	}
	if a.actorType != "" {
		if got := claimString(claims["actor_type"]); got != "" && got != a.actorType {
			return nil, NewAuthError(ReasonTokenInvalid, errors.New("unexpected actor_type "+got))
		}
	}

	return &User{
		UID:   actorID,
		Email: claimString(claims["email"]),
		Token: token,
	}, nil
}

func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	default:
		return ""
	}
}

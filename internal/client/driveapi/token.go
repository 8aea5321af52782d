package driveapi

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/drivemirror/internal/common"
)

// TokenSource supplies the bearer token sent with every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// SharedSecretSource supplies the secret that unwraps file key headers.
type SharedSecretSource interface {
	SharedSecret(ctx context.Context) ([]byte, error)
}

// Claims are the registered claims the client inspects. The signature is
// checked by the server, not here.
type Claims struct {
	jwt.RegisteredClaims
}

// CheckToken rejects an empty token and a JWT whose expiry is before now.
// Tokens that are not JWTs are treated as opaque and accepted.
func CheckToken(token string, now time.Time) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return common.ErrTokenExpired
	}
	return nil
}

// Package auth resolves the mmodel.Actor behind an inbound request from
// a bearer JWT, per spec.md §6's "server authenticates callers via a
// bearer token and resolves an Actor (user id, username, role)".
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// Claims is the payload this system signs into its bearer tokens.
type Claims struct {
	UserID   string     `json:"sub"`
	Username string     `json:"username"`
	Role     mmodel.Role `json:"role"`
	jwt.RegisteredClaims
}

// Resolver verifies bearer tokens with a single HS256 secret and
// produces the Actor downstream components authorize against.
type Resolver struct {
	secret []byte
}

// NewResolver builds a Resolver from the configured signing secret.
func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve parses an `Authorization: Bearer <token>` header value into an
// Actor. An empty header, a malformed token, or an invalid signature all
// return UnauthorizedError - spec.md makes no distinction between them
// at the API boundary.
func (r *Resolver) Resolve(header string) (mmodel.Actor, error) {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return mmodel.Actor{}, apperrors.UnauthorizedError{Message: "missing bearer token"}
	}

	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.UnauthorizedError{Message: "unexpected signing method"}
		}

		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return mmodel.Actor{}, apperrors.UnauthorizedError{Message: "invalid bearer token"}
	}

	if claims.UserID == "" {
		return mmodel.Actor{}, apperrors.UnauthorizedError{Message: "token carries no subject"}
	}

	role := claims.Role
	if role == "" {
		role = mmodel.RoleUser
	}

	return mmodel.Actor{UserID: claims.UserID, Username: claims.Username, Role: role}, nil
}

// Issue mints a signed bearer token for the given actor. Only the tests
// call it; no command in this module issues tokens.
func (r *Resolver) Issue(actor mmodel.Actor, ttl jwt.NumericDate) (string, error) {
	claims := Claims{
		UserID:   actor.UserID,
		Username: actor.Username,
		Role:     actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: &ttl,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(r.secret)
}

// Package auth verifies admin bearer tokens issued by the identity provider.
// Tokens are never minted here.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"safari_tours/internal/domain"
)

// Verifier turns a raw bearer token into the acting staff member.
type Verifier interface {
	Verify(ctx context.Context, raw string) (domain.Actor, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errors.New("authorization header is missing")
	}
	parts := strings.Fields(h)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}

// ---- HMAC (shared secret) ----

type adminClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type HMACVerifier struct{ secret []byte }

func NewHMAC(secret string) *HMACVerifier { return &HMACVerifier{secret: []byte(secret)} }

func (v *HMACVerifier) Verify(_ context.Context, raw string) (domain.Actor, error) {
	var c adminClaims
	tok, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if c.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: subject claim missing", domain.ErrUnauthorized)
	}
	return domain.Actor{Subject: c.Subject, Name: c.Name, Email: c.Email}, nil
}

// ---- OIDC ----

type OIDCVerifier struct{ v *oidc.IDTokenVerifier }

// NewOIDC discovers the issuer's keys. An empty clientID skips the audience check.
func NewOIDC(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", issuer, err)
	}
	return NewOIDCFromVerifier(provider.Verifier(&oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: clientID == "",
	})), nil
}

func NewOIDCFromVerifier(v *oidc.IDTokenVerifier) *OIDCVerifier { return &OIDCVerifier{v: v} }

func (o *OIDCVerifier) Verify(ctx context.Context, raw string) (domain.Actor, error) {
	idToken, err := o.v.Verify(ctx, raw)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	var claims struct {
		Sub               string `json:"sub"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return domain.Actor{}, fmt.Errorf("%w: claims: %v", domain.ErrUnauthorized, err)
	}
	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}
	return domain.Actor{Subject: claims.Sub, Name: name, Email: claims.Email}, nil
}

// ---- composition ----

// Chain accepts a token if any verifier does. An empty chain rejects everything.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, raw string) (domain.Actor, error) {
	if len(c) == 0 {
		return domain.Actor{}, fmt.Errorf("%w: no token verifier configured", domain.ErrUnauthorized)
	}
	var last error
	for _, v := range c {
		a, err := v.Verify(ctx, raw)
		if err == nil {
			return a, nil
		}
		last = err
	}
	return domain.Actor{}, last
}

// ---- request context ----

type ctxKey struct{}

func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFrom returns the verified actor, or the zero Actor outside admin routes.
func ActorFrom(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(ctxKey{}).(domain.Actor)
	return a
}

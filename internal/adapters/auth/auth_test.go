package auth_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safari_tours/internal/adapters/auth"
	"safari_tours/internal/domain"
)

const secret = "test-secret"

func hmacToken(t *testing.T, key string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func TestHMAC_Valid(t *testing.T) {
	raw := hmacToken(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "staff-1", "name": "Grace", "email": "grace@safari.example",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	a, err := auth.NewHMAC(secret).Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{Subject: "staff-1", Name: "Grace", Email: "grace@safari.example"}, a)
}

func TestHMAC_Rejects(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	cases := map[string]string{
		"wrong secret": hmacToken(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "exp": future}),
		"expired":      hmacToken(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no exp":       hmacToken(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}),
		"no sub":       hmacToken(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"exp": future}),
		"garbage":      "not.a.jwt",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.NewHMAC(secret).Verify(context.Background(), raw)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestHMAC_RejectsNoneAlg(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.NewHMAC(secret).Verify(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOIDC_StaticKeys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	const issuer = "https://id.safari.example/realms/staff"
	v := oidc.NewVerifier(issuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}},
		&oidc.Config{ClientID: "admin-panel"})
	ov := auth.NewOIDCFromVerifier(v)

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	good := sign(jwt.MapClaims{
		"iss": issuer, "aud": "admin-panel", "sub": "kc-42", "preferred_username": "juma",
		"exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	})
	a, err := ov.Verify(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, "kc-42", a.Subject)
	assert.Equal(t, "juma", a.Name)

	wrongAud := sign(jwt.MapClaims{"iss": issuer, "aud": "someone-else", "sub": "kc-42", "exp": time.Now().Add(time.Hour).Unix()})
	_, err = ov.Verify(context.Background(), wrongAud)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChain(t *testing.T) {
	raw := hmacToken(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "s", "exp": time.Now().Add(time.Hour).Unix()})

	_, err := auth.Chain{}.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "empty chain fails closed")

	a, err := auth.Chain{auth.NewHMAC("nope"), auth.NewHMAC(secret)}.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "s", a.Subject)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := auth.BearerToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Basic abc")
	_, err = auth.BearerToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "bearer abc.def.ghi")
	tok, err := auth.BearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)
}

func TestActorContext(t *testing.T) {
	ctx := auth.WithActor(context.Background(), domain.Actor{Name: "Grace"})
	assert.Equal(t, "Grace", auth.ActorFrom(ctx).Name)
	assert.Equal(t, domain.Actor{}, auth.ActorFrom(context.Background()))
}

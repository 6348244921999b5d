package auth_test

import (
	"testing"
	"time"

	"github.com/donelist/apiserver/config"
	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	return auth.NewTokenService(config.AuthConfig{
		SecretKey:      testSecret,
		Algorithm:      "HS256",
		AccessTokenTTL: 30 * time.Minute,
	})
}

func signClaims(t *testing.T, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestSessionRoundTrip(t *testing.T) {
	svc := newTokenService(t)

	cases := []struct {
		email string
		role  types.Role
		ttl   time.Duration
	}{
		{"a@x.com", types.RoleUser, time.Minute},
		{"admin@x.com", types.RoleAdmin, time.Hour},
		{"long-lived@x.com", types.RoleUser, 24 * time.Hour},
	}

	for _, tc := range cases {
		token, err := svc.IssueSession(tc.email, tc.role, tc.ttl)
		require.NoError(t, err)

		data, err := svc.VerifySession(token)
		require.NoError(t, err)
		assert.Equal(t, tc.email, data.Email)
		assert.Equal(t, tc.role, data.Role)
	}
}

func TestVerifySession_ZeroTTLRejected(t *testing.T) {
	svc := newTokenService(t)

	token, err := svc.IssueSession("a@x.com", types.RoleUser, 0)
	require.NoError(t, err)

	_, err = svc.VerifySession(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifySession_WrongSecret(t *testing.T) {
	svc := newTokenService(t)
	other := auth.NewTokenService(config.AuthConfig{
		SecretKey:      "another-secret",
		Algorithm:      "HS256",
		AccessTokenTTL: 30 * time.Minute,
	})

	token, err := other.IssueSession("a@x.com", types.RoleUser, time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifySession(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifySession_Malformed(t *testing.T) {
	svc := newTokenService(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.VerifySession(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	}
}

func TestVerifySession_MissingRole(t *testing.T) {
	svc := newTokenService(t)

	token := signClaims(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.VerifySession(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifySession_UnknownRole(t *testing.T) {
	svc := newTokenService(t)

	token := signClaims(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "root",
	})

	_, err := svc.VerifySession(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifySession_MissingExpiry(t *testing.T) {
	svc := newTokenService(t)

	token := signClaims(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "a@x.com"},
		Role:             "user",
	})

	_, err := svc.VerifySession(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifySession_RejectsUnsignedToken(t *testing.T) {
	svc := newTokenService(t)

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "user",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifySession(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestScopeIsolation(t *testing.T) {
	svc := newTokenService(t)

	t.Run("reset token is not a session token", func(t *testing.T) {
		token, err := svc.IssueReset("a@x.com")
		require.NoError(t, err)

		_, err = svc.VerifySession(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("session token is not a reset token", func(t *testing.T) {
		token, err := svc.IssueSession("a@x.com", types.RoleUser, time.Hour)
		require.NoError(t, err)

		_, err = svc.VerifyReset(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestVerifyReset_RoundTrip(t *testing.T) {
	svc := newTokenService(t)

	token, err := svc.IssueReset("a@x.com")
	require.NoError(t, err)

	email, err := svc.VerifyReset(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestVerifyReset_Expired(t *testing.T) {
	svc := newTokenService(t)

	token := signClaims(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Scope: "password-reset",
	})

	_, err := svc.VerifyReset(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

package auth

import (
	"errors"
	"time"

	"github.com/donelist/apiserver/config"
	"github.com/donelist/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenTTL is the validity window of a password-reset token.
const ResetTokenTTL = 15 * time.Minute

const scopePasswordReset = "password-reset"

// ErrInvalidToken is the only error verification returns. Signature
// mismatch, malformed payload, missing claims, wrong scope, and expiry all
// collapse into it so callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// TokenData is the identity a verified session token asserts.
type TokenData struct {
	Email string
	Role  types.Role
}

// Claims is the JWT payload for both session and reset tokens. Session
// tokens carry a role and no scope; reset tokens the reverse.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Scope string `json:"scope,omitempty"`
}

// TokenService issues and verifies signed, expiring tokens. The signing
// key and algorithm are fixed at construction; rotating the key
// invalidates every outstanding token.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	sessionTTL time.Duration
}

// NewTokenService constructs a TokenService from auth config.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.SecretKey),
		method:     jwt.GetSigningMethod(cfg.Algorithm),
		sessionTTL: cfg.AccessTokenTTL,
	}
}

// SessionTTL returns the configured session token lifetime.
func (s *TokenService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// IssueSession mints a session token asserting {sub, role} for ttl.
func (s *TokenService) IssueSession(email string, role types.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// IssueReset mints a password-reset token for email, valid for ResetTokenTTL.
func (s *TokenService) IssueReset(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
		},
		Scope: scopePasswordReset,
	}
	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// VerifySession checks signature and expiry and returns the embedded
// identity. Tokens missing sub or role, carrying any scope (reset tokens),
// or asserting a role outside the closed set are rejected.
func (s *TokenService) VerifySession(tokenString string) (TokenData, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return TokenData{}, err
	}
	if claims.Subject == "" || claims.Role == "" || claims.Scope != "" {
		return TokenData{}, ErrInvalidToken
	}
	role, err := types.ParseRole(claims.Role)
	if err != nil {
		return TokenData{}, ErrInvalidToken
	}
	return TokenData{Email: claims.Subject, Role: role}, nil
}

// VerifyReset checks signature, expiry, and the password-reset scope, and
// returns the subject email.
func (s *TokenService) VerifyReset(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Scope != scopePasswordReset || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

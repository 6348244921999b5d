package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/services"
	"github.com/donelist/apiserver/internal/store"
	"github.com/donelist/apiserver/types"
)

// AuthMiddleware resolves bearer tokens to stored users. A valid token
// whose subject no longer exists is treated the same as an invalid one.
type AuthMiddleware struct {
	tokens   *auth.TokenService
	accounts *services.AccountService
}

func NewAuthMiddleware(tokens *auth.TokenService, accounts *services.AccountService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts}
}

// RequireAuth enforces a valid session token and injects the resolved
// user into the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		data, err := m.tokens.VerifySession(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := m.accounts.GetByEmail(r.Context(), data.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load user")
			return
		}

		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated users whose role is not admin. It
// must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user.Role != types.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

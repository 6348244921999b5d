package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/donelist/apiserver/internal/handlers"
	"github.com/donelist/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupEndpoint(t *testing.T) {
	env := newEnv(t)

	t.Run("creates a user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users", "", handlers.SignupRequest{
			Email:    "a@x.com",
			FullName: "Alice",
			Password: "pw12345678",
		})
		requireStatus(t, rec, http.StatusCreated)

		user := decodeBody[types.User](t, rec)
		assert.Equal(t, "a@x.com", user.Email)
		assert.Equal(t, types.RoleUser, user.Role)
		assert.NotContains(t, rec.Body.String(), "pw12345678")
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users", "", handlers.SignupRequest{
			Email:    "a@x.com",
			FullName: "Other Alice",
			Password: "pw12345678",
		})
		requireStatus(t, rec, http.StatusConflict)
	})

	t.Run("short password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users", "", handlers.SignupRequest{
			Email:    "b@x.com",
			Password: "short",
		})
		requireStatus(t, rec, http.StatusUnprocessableEntity)
	})
}

func TestAdminGating(t *testing.T) {
	env := newEnv(t)
	env.seedUser(t, "user@x.com", "User", "pw12345678")
	env.seedAdmin(t, "admin@x.com", "pw12345678")

	userToken := env.login(t, "user@x.com", "pw12345678")
	adminToken := env.login(t, "admin@x.com", "pw12345678")

	adminOnly := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/users", nil},
		{http.MethodGet, "/users/1", nil},
		{http.MethodPost, "/users/invite", handlers.SignupRequest{Email: "new@x.com", Password: "pw12345678"}},
		{http.MethodPatch, "/users/1", handlers.UpdateUserRequest{}},
		{http.MethodDelete, "/users/1", nil},
		{http.MethodPost, "/users/1/reset-password", nil},
	}

	for _, route := range adminOnly {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := env.do(t, route.method, route.path, "", route.body)
			requireStatus(t, rec, http.StatusUnauthorized)

			rec = env.do(t, route.method, route.path, userToken, route.body)
			requireStatus(t, rec, http.StatusForbidden)
		})
	}

	t.Run("admin can list users", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/users", adminToken, nil)
		requireStatus(t, rec, http.StatusOK)

		resp := decodeBody[handlers.UserListResponse](t, rec)
		assert.Len(t, resp.Users, 2)
	})
}

func TestInviteEndpoint(t *testing.T) {
	env := newEnv(t)
	env.seedAdmin(t, "admin@x.com", "pw12345678")
	adminToken := env.login(t, "admin@x.com", "pw12345678")

	rec := env.do(t, http.MethodPost, "/users/invite", adminToken, handlers.SignupRequest{
		Email:    "second@x.com",
		FullName: "Second Admin",
		Password: "pw12345678",
	})
	requireStatus(t, rec, http.StatusCreated)

	user := decodeBody[types.User](t, rec)
	assert.Equal(t, types.RoleAdmin, user.Role)
}

func TestUpdateUserEndpoint(t *testing.T) {
	env := newEnv(t)
	target := env.seedUser(t, "a@x.com", "Alice", "pw12345678")
	env.seedAdmin(t, "admin@x.com", "pw12345678")
	adminToken := env.login(t, "admin@x.com", "pw12345678")

	t.Run("partial update", func(t *testing.T) {
		name := "Alice Cooper"
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", target.ID), adminToken,
			handlers.UpdateUserRequest{FullName: &name})
		requireStatus(t, rec, http.StatusOK)

		user := decodeBody[types.User](t, rec)
		assert.Equal(t, "Alice Cooper", user.FullName)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("role override via query", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/users/%d?role=admin", target.ID), adminToken,
			handlers.UpdateUserRequest{})
		requireStatus(t, rec, http.StatusOK)

		user := decodeBody[types.User](t, rec)
		assert.Equal(t, types.RoleAdmin, user.Role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/users/%d?role=superuser", target.ID), adminToken,
			handlers.UpdateUserRequest{})
		requireStatus(t, rec, http.StatusUnprocessableEntity)
	})

	t.Run("missing user", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/users/999", adminToken, handlers.UpdateUserRequest{})
		requireStatus(t, rec, http.StatusNotFound)
	})
}

func TestDeleteUserEndpoint(t *testing.T) {
	env := newEnv(t)
	target := env.seedUser(t, "a@x.com", "Alice", "pw12345678")
	env.seedAdmin(t, "admin@x.com", "pw12345678")
	adminToken := env.login(t, "admin@x.com", "pw12345678")

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", target.ID), adminToken, nil)
	requireStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/users/%d", target.ID), adminToken, nil)
	requireStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", target.ID), adminToken, nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestForgotPasswordEndpoint(t *testing.T) {
	env := newEnv(t)
	env.seedUser(t, "a@x.com", "Alice", "pw12345678")

	t.Run("unknown email still accepted, no mail sent", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users/forgot-password", "",
			handlers.ForgotPasswordRequest{Email: "nobody@x.com"})
		requireStatus(t, rec, http.StatusAccepted)
		env.mailer.assertNone(t)
	})

	t.Run("known email accepted and mail dispatched", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users/forgot-password", "",
			handlers.ForgotPasswordRequest{Email: "a@x.com"})
		requireStatus(t, rec, http.StatusAccepted)

		email := env.mailer.wait(t)
		assert.Equal(t, "a@x.com", email.To)
		assert.Equal(t, "Reset your password", email.Subject)
		assert.Contains(t, email.HTMLBody, "Hello Alice")
		assert.Contains(t, email.HTMLBody, testFrontendURL+"/reset-password?token=")
	})
}

func TestAdminResetPasswordEndpoint(t *testing.T) {
	env := newEnv(t)
	target := env.seedUser(t, "a@x.com", "Alice", "pw12345678")
	env.seedAdmin(t, "admin@x.com", "pw12345678")
	adminToken := env.login(t, "admin@x.com", "pw12345678")

	t.Run("missing user is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users/999/reset-password", adminToken, nil)
		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("existing user gets mail", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/users/%d/reset-password", target.ID), adminToken, nil)
		requireStatus(t, rec, http.StatusAccepted)

		email := env.mailer.wait(t)
		assert.Equal(t, "a@x.com", email.To)
		assert.Equal(t, "Your password reset request", email.Subject)
	})
}

func TestResetPasswordEndpoint(t *testing.T) {
	env := newEnv(t)
	env.seedUser(t, "a@x.com", "Alice", "pw12345678")

	t.Run("invalid token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users/reset-password", "",
			handlers.ResetPasswordRequest{Token: "garbage", NewPassword: "freshpassword"})
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("session token rejected", func(t *testing.T) {
		token := env.login(t, "a@x.com", "pw12345678")
		rec := env.do(t, http.MethodPost, "/users/reset-password", "",
			handlers.ResetPasswordRequest{Token: token, NewPassword: "freshpassword"})
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("short password", func(t *testing.T) {
		token, err := env.tokens.IssueReset("a@x.com")
		require.NoError(t, err)
		rec := env.do(t, http.MethodPost, "/users/reset-password", "",
			handlers.ResetPasswordRequest{Token: token, NewPassword: "short"})
		requireStatus(t, rec, http.StatusUnprocessableEntity)
	})

	t.Run("happy path", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/users/forgot-password", "",
			handlers.ForgotPasswordRequest{Email: "a@x.com"})
		requireStatus(t, rec, http.StatusAccepted)

		email := env.mailer.wait(t)
		marker := testFrontendURL + "/reset-password?token="
		start := strings.Index(email.HTMLBody, marker)
		require.GreaterOrEqual(t, start, 0)
		token := email.HTMLBody[start+len(marker):]
		token = token[:strings.IndexAny(token, `"<`)]

		rec = env.do(t, http.MethodPost, "/users/reset-password", "",
			handlers.ResetPasswordRequest{Token: token, NewPassword: "freshpassword"})
		requireStatus(t, rec, http.StatusOK)

		rec = env.do(t, http.MethodPost, "/auth/login", "",
			handlers.LoginRequest{Email: "a@x.com", Password: "freshpassword"})
		requireStatus(t, rec, http.StatusOK)
	})
}

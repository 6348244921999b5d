package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/mail"
	"github.com/donelist/apiserver/internal/services"
	"github.com/donelist/apiserver/internal/store"
	"github.com/donelist/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	minPasswordLength = 8
	mailSendTimeout   = 30 * time.Second
)

// UserHandler provides account-management endpoints.
type UserHandler struct {
	accounts *services.AccountService
	mailer   mail.Mailer
	logger   *slog.Logger
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(accounts *services.AccountService, mailer mail.Mailer, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		mailer:   mailer,
		logger:   logger,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, accounts *services.AccountService, mailer mail.Mailer, authMiddleware *AuthMiddleware, logger *slog.Logger) {
	handler := NewUserHandler(accounts, mailer, logger)

	r.Post("/", handler.Signup)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
	r.With(authMiddleware.RequireAuth).Get("/me", handler.Me)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth, RequireAdmin)
		r.Get("/", handler.ListUsers)
		r.Post("/invite", handler.Invite)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", handler.GetUser)
			r.Patch("/", handler.UpdateUser)
			r.Delete("/", handler.DeleteUser)
			r.Post("/reset-password", handler.AdminResetPassword)
		})
	})
}

// Signup registers a new user account with role "user".
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSignup(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.Signup(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Invite creates a new administrator account. Admin-only.
func (h *UserHandler) Invite(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSignup(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.Invite(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUsers returns a page of all accounts. Admin-only.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.accounts.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{Users: users, Page: page, Limit: limit})
}

// GetUser returns a single account by id. Admin-only.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser applies a partial profile update, optionally overriding the
// role via the ?role= query parameter. Admin-only.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Password != nil && len(*req.Password) < minPasswordLength {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		writeError(w, http.StatusUnprocessableEntity, "email must not be empty")
		return
	}

	var roleOverride *types.Role
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := types.ParseRole(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		roleOverride = &role
	}

	updated, err := h.accounts.Update(r.Context(), id, services.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}, roleOverride)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser removes an account and, through the record store, all of its
// todos. Admin-only.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword requests a reset link by email. The response is 202
// whether or not the address is registered.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "email must not be empty")
		return
	}

	reset, err := h.accounts.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	if reset != nil {
		h.sendAsync(mail.ResetEmail(reset.Email, reset.FullName, reset.ResetLink))
	}

	writeJSON(w, http.StatusAccepted, MessageResponse{Msg: "If that email exists, a reset link has been sent."})
}

// AdminResetPassword triggers a reset email for the given account.
// Admin-only, so a missing account is reported as 404.
func (h *UserHandler) AdminResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reset, err := h.accounts.AdminTriggerReset(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	h.sendAsync(mail.AdminResetEmail(reset.Email, reset.FullName, reset.ResetLink))

	writeJSON(w, http.StatusAccepted, MessageResponse{Msg: "Password reset email sent."})
}

// ResetPassword completes a reset using the emailed token.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusUnprocessableEntity, "token must not be empty")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	if err := h.accounts.CompleteReset(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			writeError(w, http.StatusUnauthorized, "invalid or expired reset token")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Password has been reset successfully."})
}

// sendAsync dispatches mail after the response has been written. Failures
// are logged, never surfaced to the client.
func (h *UserHandler) sendAsync(email mail.Email) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
		defer cancel()
		if err := h.mailer.Send(ctx, email); err != nil {
			h.logger.Error("failed to send email", "to", email.To, "subject", email.Subject, "error", err)
		}
	}()
}

type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UserListResponse is the paginated list response payload.
type UserListResponse struct {
	Users []types.User `json:"users"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func decodeSignup(w http.ResponseWriter, r *http.Request) (SignupRequest, bool) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return SignupRequest{}, false
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "email must not be empty")
		return SignupRequest{}, false
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return SignupRequest{}, false
	}
	return req, true
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

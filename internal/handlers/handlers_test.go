package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/donelist/apiserver/config"
	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/handlers"
	"github.com/donelist/apiserver/internal/mail"
	"github.com/donelist/apiserver/internal/services"
	"github.com/donelist/apiserver/internal/store/storetest"
	"github.com/donelist/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const testFrontendURL = "https://app.example.com"

// recordingMailer captures sent mail so tests can assert on (or wait for)
// the fire-and-forget dispatch.
type recordingMailer struct {
	ch chan mail.Email
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{ch: make(chan mail.Email, 16)}
}

func (m *recordingMailer) Send(_ context.Context, email mail.Email) error {
	m.ch <- email
	return nil
}

func (m *recordingMailer) Close() error { return nil }

func (m *recordingMailer) wait(t *testing.T) mail.Email {
	t.Helper()
	select {
	case email := <-m.ch:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email")
		return mail.Email{}
	}
}

func (m *recordingMailer) assertNone(t *testing.T) {
	t.Helper()
	select {
	case email := <-m.ch:
		t.Fatalf("unexpected email to %s", email.To)
	case <-time.After(100 * time.Millisecond):
	}
}

type env struct {
	router   *chi.Mux
	tokens   *auth.TokenService
	accounts *services.AccountService
	sessions *services.SessionService
	mailer   *recordingMailer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	memStore := storetest.New()
	tokens := auth.NewTokenService(config.AuthConfig{
		SecretKey:      "test-secret",
		Algorithm:      "HS256",
		AccessTokenTTL: 30 * time.Minute,
	})
	accounts := services.NewAccountService(memStore.Users(), tokens, testFrontendURL)
	sessions := services.NewSessionService(memStore.Users(), tokens)
	todos := services.NewTodoService(memStore.Todos())
	mailer := newRecordingMailer()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authMiddleware := handlers.NewAuthMiddleware(tokens, accounts)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, sessions, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, accounts, mailer, authMiddleware, logger)
	})
	router.Route("/todos", func(r chi.Router) {
		handlers.TodoRouter(r, todos, authMiddleware)
	})

	return &env{
		router:   router,
		tokens:   tokens,
		accounts: accounts,
		sessions: sessions,
		mailer:   mailer,
	}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) seedUser(t *testing.T, email, fullName, password string) types.User {
	t.Helper()
	user, err := e.accounts.Signup(context.Background(), email, fullName, password)
	require.NoError(t, err)
	return user
}

func (e *env) seedAdmin(t *testing.T, email, password string) types.User {
	t.Helper()
	user, err := e.accounts.Invite(context.Background(), email, "Admin", password)
	require.NoError(t, err)
	return user
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	token, err := e.sessions.Login(context.Background(), email, password)
	require.NoError(t, err)
	return token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&value))
	return value
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

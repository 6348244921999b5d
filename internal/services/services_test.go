package services_test

import (
	"testing"
	"time"

	"github.com/donelist/apiserver/config"
	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/services"
	"github.com/donelist/apiserver/internal/store/storetest"
)

const testFrontendURL = "https://app.example.com"

type testEnv struct {
	store    *storetest.Store
	tokens   *auth.TokenService
	accounts *services.AccountService
	sessions *services.SessionService
	todos    *services.TodoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	memStore := storetest.New()
	tokens := auth.NewTokenService(config.AuthConfig{
		SecretKey:      "test-secret",
		Algorithm:      "HS256",
		AccessTokenTTL: 30 * time.Minute,
	})

	return &testEnv{
		store:    memStore,
		tokens:   tokens,
		accounts: services.NewAccountService(memStore.Users(), tokens, testFrontendURL),
		sessions: services.NewSessionService(memStore.Users(), tokens),
		todos:    services.NewTodoService(memStore.Todos()),
	}
}

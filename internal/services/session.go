package services

import (
	"context"
	"errors"

	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/store"
)

// SessionService validates credentials and issues session tokens.
type SessionService struct {
	repo   UserRepository
	tokens *auth.TokenService
}

func NewSessionService(repo UserRepository, tokens *auth.TokenService) *SessionService {
	return &SessionService{repo: repo, tokens: tokens}
}

// Login verifies the credentials and returns a session token carrying the
// user's current role. An unknown email and a wrong password both yield
// ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.IssueSession(user.Email, user.Role, s.tokens.SessionTTL())
}

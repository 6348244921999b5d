package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/store"
	"github.com/donelist/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserUpdate carries the optional fields of a profile update. Nil fields
// are left untouched.
type UserUpdate struct {
	Email    *string
	FullName *string
	Password *string
}

// ResetContext is everything needed to send a password-reset email.
type ResetContext struct {
	Email     string
	FullName  string
	ResetLink string
}

// AccountService orchestrates signup, invitation, profile updates,
// deletion, and the password-reset flows.
type AccountService struct {
	repo        UserRepository
	tokens      *auth.TokenService
	frontendURL string
}

func NewAccountService(repo UserRepository, tokens *auth.TokenService, frontendURL string) *AccountService {
	return &AccountService{
		repo:        repo,
		tokens:      tokens,
		frontendURL: frontendURL,
	}
}

// Signup registers a new user with role "user".
func (s *AccountService) Signup(ctx context.Context, email, fullName, password string) (types.User, error) {
	return s.create(ctx, email, fullName, password, types.RoleUser)
}

// Invite registers a new administrator account. Callers are responsible
// for gating this behind an admin check.
func (s *AccountService) Invite(ctx context.Context, email, fullName, password string) (types.User, error) {
	return s.create(ctx, email, fullName, password, types.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, email, fullName, password string, role types.Role) (types.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}

func (s *AccountService) Get(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *AccountService) List(ctx context.Context, offset, limit int) ([]types.User, error) {
	return s.repo.List(ctx, offset, limit)
}

// Update applies the provided fields to the user. A non-nil password is
// re-hashed; plaintext is never persisted. roleOverride changes the role
// and must only be passed from admin-initiated calls.
func (s *AccountService) Update(ctx context.Context, id int, upd UserUpdate, roleOverride *types.Role) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hash
	}
	if roleOverride != nil {
		user.Role = *roleOverride
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return updated, nil
}

// Delete removes the user. The record store cascades deletion of the
// user's todos.
func (s *AccountService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// RequestPasswordReset issues a reset token for the given email. It
// returns (nil, nil) when the email is not registered; the caller must
// still report generic success so account existence is never revealed.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (*ResetContext, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.resetContext(user)
}

// AdminTriggerReset issues a reset token for the user with the given id.
// Unlike RequestPasswordReset it surfaces ErrNotFound: the admin already
// knows whether the account exists.
func (s *AccountService) AdminTriggerReset(ctx context.Context, id int) (*ResetContext, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resetContext(user)
}

// CompleteReset verifies a reset token and persists the new password.
// Returns auth.ErrInvalidToken for a bad or expired token and
// store.ErrNotFound when the subject no longer maps to a user.
func (s *AccountService) CompleteReset(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.VerifyReset(token)
	if err != nil {
		return err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	_, err = s.repo.Update(ctx, user)
	return err
}

func (s *AccountService) resetContext(user types.User) (*ResetContext, error) {
	token, err := s.tokens.IssueReset(user.Email)
	if err != nil {
		return nil, err
	}
	return &ResetContext{
		Email:     user.Email,
		FullName:  user.FullName,
		ResetLink: fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token)),
	}, nil
}

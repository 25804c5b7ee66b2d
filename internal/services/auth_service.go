package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/utils"
)

// AuthService owns the credential lifecycle: registration, login and
// password changes. Plaintext passwords never leave this package.
type AuthService struct {
	users          UserStore
	tokens         *TokenService
	passwordMinLen int
}

// AuthResult is what register/login/password-change hand back: a fresh
// token plus the sanitized user.
type AuthResult struct {
	Token     string
	ExpiresIn int64
	User      *models.User
}

func NewAuthService(users UserStore, tokens *TokenService, passwordMinLen int) *AuthService {
	return &AuthService{users: users, tokens: tokens, passwordMinLen: passwordMinLen}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if len(password) < s.passwordMinLen {
		return nil, utils.NewAppError(http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", s.passwordMinLen))
	}

	// Friendly pre-check; the unique index still decides races.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, utils.NewAppError(http.StatusBadRequest, "Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash), models.RoleUser)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, utils.NewAppError(http.StatusBadRequest, "Email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueFor(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	// Unknown email and wrong password must be indistinguishable to the
	// caller.
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "Incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "Incorrect email or password")
	}

	return s.issueFor(user)
}

// UpdatePassword re-issues a token on success; previously issued tokens
// stay valid until they expire.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "The user belonging to this token no longer exists")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "Current password is incorrect")
	}

	if currentPassword == newPassword {
		return nil, utils.NewAppError(http.StatusBadRequest, "New password must be different")
	}

	if len(newPassword) < s.passwordMinLen {
		return nil, utils.NewAppError(http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", s.passwordMinLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	return s.issueFor(user)
}

func (s *AuthService) issueFor(user *models.User) (*AuthResult, error) {
	token, expiresIn, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresIn: expiresIn, User: user}, nil
}

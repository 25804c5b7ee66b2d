package db

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/services"
)

const seedAdminEmail = "admin@musicworld.local"

// EnsureAdmin creates the bootstrap admin account when SEED_ADMIN_PASSWORD
// is set and no admin with the well-known email exists yet.
func EnsureAdmin(ctx context.Context, users services.UserStore, password string) error {
	if password == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, seedAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("check seed admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	if _, err := users.Create(ctx, "admin", seedAdminEmail, string(hash), models.RoleAdmin); err != nil {
		return fmt.Errorf("insert seed admin: %w", err)
	}
	return nil
}

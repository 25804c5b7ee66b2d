package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/utils"
)

// UserService covers profile self-service and the admin-only user
// management operations.
type UserService struct {
	users  UserStore
	albums AlbumStore
}

// ProfilePatch carries the only two fields a profile update honors. Any
// extra submitted fields (role included) are dropped before they reach
// this type.
type ProfilePatch struct {
	Username *string
	Email    *string
}

type AdminStats struct {
	TotalUsers     int64                 `json:"totalUsers"`
	TotalAlbums    int64                 `json:"totalAlbums"`
	NewUsersToday  int64                 `json:"newUsersToday"`
	NewAlbumsToday int64                 `json:"newAlbumsToday"`
	UsersByRole    map[models.Role]int64 `json:"usersByRole"`
}

func NewUserService(users UserStore, albums AlbumStore) *UserService {
	return &UserService{users: users, albums: albums}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "User not found")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "User not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	username := user.Username
	email := user.Email
	if patch.Username != nil {
		username = *patch.Username
	}
	if patch.Email != nil {
		email = *patch.Email
	}

	updated, err := s.users.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, utils.NewAppError(http.StatusBadRequest, "Email already exists")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) AdminStats(ctx context.Context) (*AdminStats, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	userStats, err := s.users.Stats(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	albumStats, err := s.albums.Stats(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("album stats: %w", err)
	}

	byRole := map[models.Role]int64{
		models.RoleUser:  userStats.ByRole[models.RoleUser],
		models.RoleAdmin: userStats.ByRole[models.RoleAdmin],
	}

	return &AdminStats{
		TotalUsers:     userStats.Total,
		TotalAlbums:    albumStats.Total,
		NewUsersToday:  userStats.NewSince,
		NewAlbumsToday: albumStats.NewSince,
		UsersByRole:    byRole,
	}, nil
}

// DeleteUser is the admin route; admins must use self-service deletion for
// their own account.
func (s *UserService) DeleteUser(ctx context.Context, adminID, targetID string) error {
	if adminID == targetID {
		return utils.NewAppError(http.StatusBadRequest, "You cannot delete your own account from admin panel")
	}

	deleted, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !deleted {
		return utils.NewAppError(http.StatusNotFound, "No user found with that ID")
	}
	return nil
}

package services

import (
	"context"
	"time"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
)

// UserStore is the persistence surface the services need. Both the pgx
// repo and the in-memory repo implement it, so tests run against an
// isolated store per run.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string, role models.Role) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, username, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	Stats(ctx context.Context, since time.Time) (*repo.UserStats, error)
}

type AlbumStore interface {
	Create(ctx context.Context, album *models.Album) (*models.Album, error)
	GetByID(ctx context.Context, id string) (*models.Album, error)
	Update(ctx context.Context, album *models.Album) (*models.Album, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filters repo.AlbumFilters) ([]models.Album, int64, error)
	Stats(ctx context.Context, since time.Time) (*repo.AlbumStats, error)
}

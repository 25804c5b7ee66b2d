package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/utils"
)

type AlbumService struct {
	albums AlbumStore
}

// AlbumPatch holds the updatable album fields; nil means leave unchanged.
type AlbumPatch struct {
	Title       *string
	Artist      *string
	Genre       *string
	ReleaseDate *time.Time
	Description *string
	CoverImage  *string
}

func NewAlbumService(albums AlbumStore) *AlbumService {
	return &AlbumService{albums: albums}
}

func (s *AlbumService) Create(ctx context.Context, owner *models.User, album *models.Album) (*models.Album, error) {
	album.CreatedBy = owner.ID
	created, err := s.albums.Create(ctx, album)
	if err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return created, nil
}

func (s *AlbumService) Get(ctx context.Context, id string) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "No album found with that ID")
		}
		return nil, fmt.Errorf("get album: %w", err)
	}
	return album, nil
}

func (s *AlbumService) List(ctx context.Context, filters repo.AlbumFilters) ([]models.Album, int64, error) {
	albums, total, err := s.albums.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("list albums: %w", err)
	}
	return albums, total, nil
}

func (s *AlbumService) Update(ctx context.Context, user *models.User, id string, patch AlbumPatch) (*models.Album, error) {
	album, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanMutateAlbum(user, album) {
		return nil, utils.NewAppError(http.StatusForbidden, "You do not have permission to perform this action")
	}

	// Title and artist are mandatory; an explicit empty value is a client error.
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, utils.NewAppError(http.StatusBadRequest, "title cannot be empty")
	}
	if patch.Artist != nil && strings.TrimSpace(*patch.Artist) == "" {
		return nil, utils.NewAppError(http.StatusBadRequest, "artist cannot be empty")
	}

	if patch.Title != nil {
		album.Title = *patch.Title
	}
	if patch.Artist != nil {
		album.Artist = *patch.Artist
	}
	if patch.Genre != nil {
		album.Genre = *patch.Genre
	}
	if patch.ReleaseDate != nil {
		album.ReleaseDate = *patch.ReleaseDate
	}
	if patch.Description != nil {
		album.Description = *patch.Description
	}
	if patch.CoverImage != nil {
		album.CoverImage = *patch.CoverImage
	}

	updated, err := s.albums.Update(ctx, album)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "No album found with that ID")
		}
		return nil, fmt.Errorf("update album: %w", err)
	}
	return updated, nil
}

func (s *AlbumService) Delete(ctx context.Context, user *models.User, id string) error {
	album, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !CanMutateAlbum(user, album) {
		return utils.NewAppError(http.StatusForbidden, "You do not have permission to perform this action")
	}

	if _, err := s.albums.Delete(ctx, album.ID); err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}

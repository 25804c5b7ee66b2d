package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msaimsawaid/music/internal/models"
)

// MemoryUserRepo is an in-process UserRepo equivalent. It backs tests and
// ephemeral runs without a database; email uniqueness is enforced under the
// same lock that performs the insert, mirroring the unique index.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, username, email, passwordHash string, role models.Role) (*models.User, error) {
	// Mirrors the role CHECK constraint in the users table.
	if !role.Valid() {
		return nil, fmt.Errorf("create user: invalid role %q", role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	return &user, nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) UpdateProfile(_ context.Context, id, username, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}
	u.Username = username
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return &u, nil
}

func (r *MemoryUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *MemoryUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryUserRepo) Stats(_ context.Context, since time.Time) (*UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &UserStats{ByRole: make(map[models.Role]int64)}
	for _, u := range r.users {
		stats.Total++
		if !u.CreatedAt.Before(since) {
			stats.NewSince++
		}
		stats.ByRole[u.Role]++
	}
	return stats, nil
}

// MemoryAlbumRepo mirrors AlbumRepo over a map.
type MemoryAlbumRepo struct {
	mu     sync.RWMutex
	albums map[string]models.Album
}

func NewMemoryAlbumRepo() *MemoryAlbumRepo {
	return &MemoryAlbumRepo{albums: make(map[string]models.Album)}
}

func (r *MemoryAlbumRepo) Create(_ context.Context, album *models.Album) (*models.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	album.ID = uuid.NewString()
	if album.ReleaseDate.IsZero() {
		album.ReleaseDate = now
	}
	album.CreatedAt = now
	album.UpdatedAt = now
	r.albums[album.ID] = *album
	return album, nil
}

func (r *MemoryAlbumRepo) GetByID(_ context.Context, id string) (*models.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.albums[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryAlbumRepo) Update(_ context.Context, album *models.Album) (*models.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.albums[album.ID]
	if !ok {
		return nil, ErrNotFound
	}
	album.CreatedBy = stored.CreatedBy
	album.CreatedAt = stored.CreatedAt
	album.UpdatedAt = time.Now().UTC()
	r.albums[album.ID] = *album
	return album, nil
}

func (r *MemoryAlbumRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.albums[id]; !ok {
		return false, nil
	}
	delete(r.albums, id)
	return true, nil
}

func (r *MemoryAlbumRepo) List(_ context.Context, filters AlbumFilters) ([]models.Album, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Album
	for _, a := range r.albums {
		if !matchesAlbumFilters(a, filters) {
			continue
		}
		matched = append(matched, a)
	}

	sortAlbums(matched, filters.SortBy, filters.SortDir)
	total := int64(len(matched))

	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryAlbumRepo) Stats(_ context.Context, since time.Time) (*AlbumStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats AlbumStats
	for _, a := range r.albums {
		stats.Total++
		if !a.CreatedAt.Before(since) {
			stats.NewSince++
		}
	}
	return &stats, nil
}

func matchesAlbumFilters(a models.Album, filters AlbumFilters) bool {
	if filters.Genre != "" && a.Genre != filters.Genre {
		return false
	}
	if filters.Artist != "" && a.Artist != filters.Artist {
		return false
	}
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		haystack := strings.ToLower(a.Title + " " + a.Artist + " " + a.Genre)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func sortAlbums(albums []models.Album, sortBy, sortDir string) {
	desc := strings.ToLower(sortDir) == "desc"
	less := func(i, j int) bool {
		a, b := albums[i], albums[j]
		switch strings.ToLower(sortBy) {
		case "title":
			return a.Title < b.Title
		case "artist":
			return a.Artist < b.Artist
		case "genre":
			return a.Genre < b.Genre
		case "release_date":
			return a.ReleaseDate.Before(b.ReleaseDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.Slice(albums, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

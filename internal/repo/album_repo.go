package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/msaimsawaid/music/internal/models"
)

type AlbumRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

type AlbumFilters struct {
	Search  string
	Genre   string
	Artist  string
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

type AlbumStats struct {
	Total    int64
	NewSince int64
}

func NewAlbumRepo(pool *pgxpool.Pool, timeout time.Duration) *AlbumRepo {
	return &AlbumRepo{pool: pool, timeout: timeout}
}

func (r *AlbumRepo) Create(ctx context.Context, album *models.Album) (*models.Album, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO albums (title, artist, genre, release_date, cover_image, description, created_by)
		VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, $6, $7)
		RETURNING id, release_date, created_at, updated_at
	`,
		album.Title,
		album.Artist,
		album.Genre,
		nullTime(album.ReleaseDate),
		album.CoverImage,
		album.Description,
		album.CreatedBy,
	)

	if err := row.Scan(&album.ID, &album.ReleaseDate, &album.CreatedAt, &album.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert album: %w", err)
	}
	return album, nil
}

func (r *AlbumRepo) GetByID(ctx context.Context, id string) (*models.Album, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, title, artist, genre, release_date, cover_image, description, created_by, created_at, updated_at
		FROM albums
		WHERE id = $1
	`, id)

	var a models.Album
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Artist,
		&a.Genre,
		&a.ReleaseDate,
		&a.CoverImage,
		&a.Description,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get album: %w", err)
	}
	return &a, nil
}

// Update persists the mutable fields; created_by is never written.
func (r *AlbumRepo) Update(ctx context.Context, album *models.Album) (*models.Album, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		UPDATE albums
		SET title = $1, artist = $2, genre = $3, release_date = $4,
		    cover_image = $5, description = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`,
		album.Title,
		album.Artist,
		album.Genre,
		album.ReleaseDate,
		album.CoverImage,
		album.Description,
		album.ID,
	)

	if err := row.Scan(&album.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update album: %w", err)
	}
	return album, nil
}

func (r *AlbumRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete album: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *AlbumRepo) List(ctx context.Context, filters AlbumFilters) ([]models.Album, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whereSQL, args := buildAlbumFilters(filters)

	sortColumn := mapAlbumSortColumn(filters.SortBy)
	sortDir := "ASC"
	if strings.ToLower(filters.SortDir) == "desc" {
		sortDir = "DESC"
	}

	limit := filters.PerPage
	if limit <= 0 {
		limit = 10
	}
	offset := (filters.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT id, title, artist, genre, release_date, cover_image, description, created_by, created_at, updated_at
		FROM albums
		%s
		ORDER BY %s %s
		LIMIT %d OFFSET %d
	`, whereSQL, sortColumn, sortDir, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var results []models.Album
	for rows.Next() {
		var a models.Album
		if err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Artist,
			&a.Genre,
			&a.ReleaseDate,
			&a.CoverImage,
			&a.Description,
			&a.CreatedBy,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan album: %w", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate albums: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM albums %s`, whereSQL)
	row := r.pool.QueryRow(ctx, countQuery, args...)
	var total int64
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count albums: %w", err)
	}

	return results, total, nil
}

func (r *AlbumRepo) Stats(ctx context.Context, since time.Time) (*AlbumStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stats AlbumStats
	row := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1)
		FROM albums
	`, since)
	if err := row.Scan(&stats.Total, &stats.NewSince); err != nil {
		return nil, fmt.Errorf("album stats: %w", err)
	}
	return &stats, nil
}

func buildAlbumFilters(filters AlbumFilters) (string, []any) {
	clauses := []string{"WHERE 1=1"}
	args := []any{}
	index := 1

	if filters.Search != "" {
		clauses = append(clauses, fmt.Sprintf("AND (title ILIKE $%d OR artist ILIKE $%d OR genre ILIKE $%d)", index, index, index))
		args = append(args, "%"+filters.Search+"%")
		index++
	}

	if filters.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("AND genre = $%d", index))
		args = append(args, filters.Genre)
		index++
	}

	if filters.Artist != "" {
		clauses = append(clauses, fmt.Sprintf("AND artist = $%d", index))
		args = append(args, filters.Artist)
		index++
	}

	return strings.Join(clauses, "\n"), args
}

func mapAlbumSortColumn(sortBy string) string {
	switch strings.ToLower(sortBy) {
	case "title":
		return "title"
	case "artist":
		return "artist"
	case "genre":
		return "genre"
	case "release_date":
		return "release_date"
	case "created_at":
		return "created_at"
	default:
		return "created_at"
	}
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

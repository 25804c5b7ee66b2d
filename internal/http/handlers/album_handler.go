package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/http/middleware"
	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/storage"
	"github.com/msaimsawaid/music/internal/utils"
)

// formBodySlack is headroom on top of the image size cap for the other
// multipart fields.
const formBodySlack = 1 << 20

type AlbumHandler struct {
	albums    *services.AlbumService
	covers    storage.Store
	maxUpload int64
}

type AlbumCreateRequest struct {
	Title       string `form:"title" binding:"required"`
	Artist      string `form:"artist" binding:"required"`
	Genre       string `form:"genre"`
	ReleaseDate string `form:"release_date"`
	Description string `form:"description"`
}

type AlbumUpdateRequest struct {
	Title       *string `form:"title" json:"title"`
	Artist      *string `form:"artist" json:"artist"`
	Genre       *string `form:"genre" json:"genre"`
	ReleaseDate *string `form:"release_date" json:"release_date"`
	Description *string `form:"description" json:"description"`
}

func NewAlbumHandler(albums *services.AlbumService, covers storage.Store, maxUpload int64) *AlbumHandler {
	return &AlbumHandler{albums: albums, covers: covers, maxUpload: maxUpload}
}

func (h *AlbumHandler) List(c *gin.Context) {
	filters := repo.AlbumFilters{
		Search:  c.Query("search"),
		Genre:   c.Query("genre"),
		Artist:  c.Query("artist"),
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
		Page:    parseIntDefault(c.Query("page"), 1),
		PerPage: parseIntDefault(c.Query("per_page"), 10),
	}

	albums, total, err := h.albums.List(c.Request.Context(), filters)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if albums == nil {
		albums = []models.Album{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": len(albums),
		"data":    gin.H{"albums": albums},
		"meta":    utils.NewPagination(filters.Page, filters.PerPage, total),
	})
}

func (h *AlbumHandler) Get(c *gin.Context) {
	album, err := h.albums.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"album": album})
}

func (h *AlbumHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formBodySlack)

	var req AlbumCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, err.Error()))
		return
	}

	album := &models.Album{
		Title:       req.Title,
		Artist:      req.Artist,
		Genre:       req.Genre,
		Description: req.Description,
	}

	if req.ReleaseDate != "" {
		parsed, err := parseReleaseDate(req.ReleaseDate)
		if err != nil {
			utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "release_date must be RFC3339 or YYYY-MM-DD"))
			return
		}
		album.ReleaseDate = parsed
	}

	path, responded := h.saveCover(c)
	if responded {
		return
	}
	if path != "" {
		album.CoverImage = path
	}

	created, err := h.albums.Create(c.Request.Context(), middleware.CurrentUser(c), album)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondCreated(c, gin.H{"album": created})
}

func (h *AlbumHandler) Update(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formBodySlack)

	var req AlbumUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, err.Error()))
		return
	}

	patch := services.AlbumPatch{
		Title:       req.Title,
		Artist:      req.Artist,
		Genre:       req.Genre,
		Description: req.Description,
	}

	if req.ReleaseDate != nil && *req.ReleaseDate != "" {
		parsed, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "release_date must be RFC3339 or YYYY-MM-DD"))
			return
		}
		patch.ReleaseDate = &parsed
	}

	path, responded := h.saveCover(c)
	if responded {
		return
	}
	if path != "" {
		patch.CoverImage = &path
	}

	updated, err := h.albums.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), patch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"album": updated})
}

func (h *AlbumHandler) Delete(c *gin.Context) {
	if err := h.albums.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// saveCover stores the optional coverImage part. The second return reports
// that an error response has already been written.
func (h *AlbumHandler) saveCover(c *gin.Context) (string, bool) {
	file, err := c.FormFile("coverImage")
	if err != nil {
		if isBodyTooLarge(err) {
			utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "Image must be 5MB or smaller"))
			return "", true
		}
		// No file attached.
		return "", false
	}

	path, err := h.covers.Save(file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotAnImage):
			utils.RespondError(c, utils.NewAppError(http.StatusUnsupportedMediaType, "Not an image! Please upload only images."))
		case errors.Is(err, storage.ErrTooLarge):
			utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "Image must be 5MB or smaller"))
		default:
			utils.RespondError(c, err)
		}
		return "", true
	}
	return path, false
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large")
}

func parseReleaseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

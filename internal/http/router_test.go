package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/msaimsawaid/music/internal/config"
	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/storage"
)

// pngBytes is enough for content sniffing to recognize image/png.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type APITestSuite struct {
	suite.Suite
	router *gin.Engine
	users  *repo.MemoryUserRepo
	tokens *services.TokenService
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:            "test",
		UploadsBackend: "disk",
		UploadsDir:     s.T().TempDir(),
		MaxUploadSize:  5 * 1024 * 1024,
		PasswordMinLen: 6,
	}

	s.users = repo.NewMemoryUserRepo()
	albums := repo.NewMemoryAlbumRepo()
	s.tokens = services.NewTokenService("test-secret", time.Hour)

	covers, err := storage.NewDiskStore(cfg.UploadsDir, cfg.MaxUploadSize)
	s.Require().NoError(err)

	s.router = NewRouter(Dependencies{
		Config:       cfg,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:       s.tokens,
		Users:        s.users,
		AuthService:  services.NewAuthService(s.users, s.tokens, cfg.PasswordMinLen),
		UserService:  services.NewUserService(s.users, albums),
		AlbumService: services.NewAlbumService(albums),
		CoverStore:   covers,
	})
}

func (s *APITestSuite) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *APITestSuite) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	return s.do(method, path, token, bytes.NewReader(data), "application/json")
}

func (s *APITestSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *APITestSuite) register(username, email, password string) (token, userID string) {
	rec := s.doJSON(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	body := s.decode(rec)
	token = body["token"].(string)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	return token, user["id"].(string)
}

func (s *APITestSuite) makeAdmin(username, email string) (token, userID string) {
	hash, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	s.Require().NoError(err)
	admin, err := s.users.Create(context.Background(), username, email, string(hash), models.RoleAdmin)
	s.Require().NoError(err)
	tok, _, err := s.tokens.Issue(admin.ID)
	s.Require().NoError(err)
	return tok, admin.ID
}

func (s *APITestSuite) multipartAlbum(fields map[string]string, fileField, fileName string, fileContent []byte) (io.Reader, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		s.Require().NoError(writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		s.Require().NoError(err)
		_, err = part.Write(fileContent)
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.Close())
	return &buf, writer.FormDataContentType()
}

func (s *APITestSuite) createAlbum(token string, fields map[string]string) map[string]any {
	body, contentType := s.multipartAlbum(fields, "", "", nil)
	rec := s.do(http.MethodPost, "/api/albums", token, body, contentType)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return s.decode(rec)["data"].(map[string]any)["album"].(map[string]any)
}

func (s *APITestSuite) TestRegisterDuplicateEmail() {
	s.register("alice", "a@x.com", "password123")

	rec := s.doJSON(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "imposter",
		"email":    "a@x.com",
		"password": "password456",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "Email already exists")
}

func (s *APITestSuite) TestLoginEnumerationSafety() {
	s.register("alice", "a@x.com", "password123")

	wrongPassword := s.doJSON(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "nope00"})
	unknownEmail := s.doJSON(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@x.com", "password": "password123"})

	s.Equal(http.StatusUnauthorized, wrongPassword.Code)
	s.Equal(http.StatusUnauthorized, unknownEmail.Code)
	s.Equal(s.decode(wrongPassword)["message"], s.decode(unknownEmail)["message"])
}

func (s *APITestSuite) TestLoginIgnoresEmailCase() {
	s.register("alice", "Alice@X.com", "password123")

	rec := s.doJSON(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@x.com", "password": "password123"})
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.NotEmpty(s.decode(rec)["token"])
}

func (s *APITestSuite) TestAlbumUpdateCannotBlankTitleOrArtist() {
	token, _ := s.register("alice", "a@x.com", "password123")
	album := s.createAlbum(token, map[string]string{"title": "X", "artist": "Y"})
	albumID := album["id"].(string)

	rec := s.doJSON(http.MethodPatch, "/api/albums/"+albumID, token, gin.H{"title": "", "artist": ""})
	s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())

	get := s.do(http.MethodGet, "/api/albums/"+albumID, "", nil, "")
	s.Equal(http.StatusOK, get.Code)
	kept := s.decode(get)["data"].(map[string]any)["album"].(map[string]any)
	s.Equal("X", kept["title"])
	s.Equal("Y", kept["artist"])
}

func (s *APITestSuite) TestAlbumOwnershipScenario() {
	aliceToken, aliceID := s.register("alice", "a@x.com", "password123")

	album := s.createAlbum(aliceToken, map[string]string{"title": "X", "artist": "Y"})
	s.Equal(aliceID, album["created_by"])
	albumID := album["id"].(string)

	bobToken, _ := s.register("bob", "b@x.com", "password123")

	del := s.do(http.MethodDelete, "/api/albums/"+albumID, bobToken, nil, "")
	s.Equal(http.StatusForbidden, del.Code)

	patchBody, contentType := s.multipartAlbum(map[string]string{"title": "Stolen"}, "", "", nil)
	patch := s.do(http.MethodPatch, "/api/albums/"+albumID, bobToken, patchBody, contentType)
	s.Equal(http.StatusForbidden, patch.Code)

	adminToken, _ := s.makeAdmin("root", "root@x.com")
	del = s.do(http.MethodDelete, "/api/albums/"+albumID, adminToken, nil, "")
	s.Equal(http.StatusNoContent, del.Code)

	get := s.do(http.MethodGet, "/api/albums/"+albumID, "", nil, "")
	s.Equal(http.StatusNotFound, get.Code)
}

func (s *APITestSuite) TestAlbumReadsArePublic() {
	aliceToken, _ := s.register("alice", "a@x.com", "password123")
	album := s.createAlbum(aliceToken, map[string]string{"title": "X", "artist": "Y", "genre": "Jazz"})

	list := s.do(http.MethodGet, "/api/albums?genre=Jazz", "", nil, "")
	s.Equal(http.StatusOK, list.Code)
	s.Contains(list.Body.String(), "Jazz")

	get := s.do(http.MethodGet, "/api/albums/"+album["id"].(string), "", nil, "")
	s.Equal(http.StatusOK, get.Code)

	create := s.do(http.MethodPost, "/api/albums", "", nil, "")
	s.Equal(http.StatusUnauthorized, create.Code)
}

func (s *APITestSuite) TestAlbumRequiresTitleAndArtist() {
	token, _ := s.register("alice", "a@x.com", "password123")

	body, contentType := s.multipartAlbum(map[string]string{"title": "X"}, "", "", nil)
	rec := s.do(http.MethodPost, "/api/albums", token, body, contentType)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APITestSuite) TestAlbumCoverUpload() {
	token, _ := s.register("alice", "a@x.com", "password123")

	body, contentType := s.multipartAlbum(map[string]string{"title": "X", "artist": "Y"}, "coverImage", "cover.png", pngBytes)
	rec := s.do(http.MethodPost, "/api/albums", token, body, contentType)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	album := s.decode(rec)["data"].(map[string]any)["album"].(map[string]any)
	s.Contains(album["cover_image"], "/uploads/cover-")
}

func (s *APITestSuite) TestAlbumCoverRejectsNonImage() {
	token, _ := s.register("alice", "a@x.com", "password123")

	body, contentType := s.multipartAlbum(map[string]string{"title": "X", "artist": "Y"}, "coverImage", "notes.txt", []byte("plain text, not an image"))
	rec := s.do(http.MethodPost, "/api/albums", token, body, contentType)
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (s *APITestSuite) TestTokenOutlivesAccount() {
	token, _ := s.register("alice", "a@x.com", "password123")

	del := s.doJSON(http.MethodDelete, "/api/users/profile", token, nil)
	s.Equal(http.StatusOK, del.Code)

	profile := s.do(http.MethodGet, "/api/users/profile", token, nil, "")
	s.Equal(http.StatusUnauthorized, profile.Code)
}

func (s *APITestSuite) TestProfilePatchIgnoresRole() {
	token, _ := s.register("alice", "a@x.com", "password123")

	rec := s.doJSON(http.MethodPatch, "/api/users/profile", token, gin.H{
		"username": "alice2",
		"role":     "admin",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	user := s.decode(rec)["data"].(map[string]any)["user"].(map[string]any)
	s.Equal("alice2", user["username"])
	s.Equal("user", user["role"])

	// Role gate still holds.
	list := s.do(http.MethodGet, "/api/users", token, nil, "")
	s.Equal(http.StatusForbidden, list.Code)
}

func (s *APITestSuite) TestUpdatePasswordSameRejected() {
	token, _ := s.register("alice", "a@x.com", "password123")

	rec := s.doJSON(http.MethodPatch, "/api/users/updatePassword", token, gin.H{
		"currentPassword": "password123",
		"newPassword":     "password123",
	})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.doJSON(http.MethodPatch, "/api/users/updatePassword", token, gin.H{
		"currentPassword": "password123",
		"newPassword":     "password456",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotEmpty(s.decode(rec)["token"])
}

func (s *APITestSuite) TestAdminUserManagement() {
	_, bobID := s.register("bob", "b@x.com", "password123")
	adminToken, adminID := s.makeAdmin("root", "root@x.com")

	list := s.do(http.MethodGet, "/api/users", adminToken, nil, "")
	s.Equal(http.StatusOK, list.Code)
	s.NotContains(list.Body.String(), "password")

	stats := s.do(http.MethodGet, "/api/users/admin/stats", adminToken, nil, "")
	s.Equal(http.StatusOK, stats.Code)
	s.Contains(stats.Body.String(), "totalUsers")

	selfDelete := s.do(http.MethodDelete, "/api/users/"+adminID, adminToken, nil, "")
	s.Equal(http.StatusBadRequest, selfDelete.Code)

	otherDelete := s.do(http.MethodDelete, "/api/users/"+bobID, adminToken, nil, "")
	s.Equal(http.StatusOK, otherDelete.Code)

	// Admin self-deletes through the self-service route instead.
	selfService := s.doJSON(http.MethodDelete, "/api/users/profile", adminToken, nil)
	s.Equal(http.StatusOK, selfService.Code)
}

func (s *APITestSuite) TestUnknownRouteReturnsEnvelope() {
	rec := s.do(http.MethodGet, "/api/nope", "", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), `"success":false`)
}

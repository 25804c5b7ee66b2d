package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/config"
	"github.com/msaimsawaid/music/internal/http/handlers"
	"github.com/msaimsawaid/music/internal/http/middleware"
	"github.com/msaimsawaid/music/internal/models"
	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/storage"
	"github.com/msaimsawaid/music/internal/utils"
)

type Dependencies struct {
	Config       *config.Config
	Logger       *slog.Logger
	Tokens       *services.TokenService
	Users        services.UserStore
	AuthService  *services.AuthService
	UserService  *services.UserService
	AlbumService *services.AlbumService
	CoverStore   storage.Store
	APILimiter   *middleware.RateLimiter
	AuthLimiter  *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.AuthService)
	albumHandler := handlers.NewAlbumHandler(deps.AlbumService, deps.CoverStore, deps.Config.MaxUploadSize)

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Users)

	router.GET("/health", handlers.Health)
	if deps.Config.UploadsBackend == "disk" {
		router.Static("/uploads", deps.Config.UploadsDir)
	}

	api := router.Group("/api")
	if deps.Config.RateLimitEnabled && deps.APILimiter != nil {
		api.Use(deps.APILimiter.Middleware())
	}

	authGroup := api.Group("/auth")
	if deps.Config.RateLimitEnabled && deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Middleware())
	}
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	albums := api.Group("/albums")
	{
		albums.GET("", albumHandler.List)
		albums.GET("/:id", albumHandler.Get)
		albums.POST("", requireAuth, albumHandler.Create)
		albums.PATCH("/:id", requireAuth, albumHandler.Update)
		albums.DELETE("/:id", requireAuth, albumHandler.Delete)
	}

	users := api.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PATCH("/profile", userHandler.UpdateProfile)
		users.PATCH("/updatePassword", userHandler.UpdatePassword)
		users.DELETE("/profile", userHandler.DeleteAccount)

		admin := users.Group("")
		admin.Use(middleware.RestrictTo(models.RoleAdmin))
		admin.GET("", userHandler.ListUsers)
		admin.GET("/admin/stats", userHandler.AdminStats)
		admin.DELETE("/:id", userHandler.DeleteUser)
	}

	router.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, utils.NewAppError(http.StatusNotFound, fmt.Sprintf("Route %s not found", c.Request.URL.Path)))
	})

	return router
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/config"
	"github.com/msaimsawaid/music/internal/db"
	transport "github.com/msaimsawaid/music/internal/http"
	"github.com/msaimsawaid/music/internal/http/middleware"
	"github.com/msaimsawaid/music/internal/repo"
	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/storage"
	"github.com/msaimsawaid/music/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	utils.SetIncludeStacks(cfg.IncludeErrorStacks)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.Migrate(cfg.DBURL, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.Connect(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	userRepo := repo.NewUserRepo(dbConn.Pool, cfg.RequestTimeout)
	albumRepo := repo.NewAlbumRepo(dbConn.Pool, cfg.RequestTimeout)

	if err := db.EnsureAdmin(ctx, userRepo, cfg.SeedAdminPassword); err != nil {
		logger.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}

	coverStore, err := newCoverStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to init cover storage", "error", err)
		os.Exit(1)
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(userRepo, tokens, cfg.PasswordMinLen)
	userService := services.NewUserService(userRepo, albumRepo)
	albumService := services.NewAlbumService(albumRepo)

	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		Logger:       logger,
		Tokens:       tokens,
		Users:        userRepo,
		AuthService:  authService,
		UserService:  userService,
		AlbumService: albumService,
		CoverStore:   coverStore,
		APILimiter:   middleware.NewRateLimiter(cfg.RateLimitAPI, cfg.RateLimitWindow),
		AuthLimiter:  middleware.NewRateLimiter(cfg.RateLimitAuth, cfg.RateLimitWindow),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrors:
		logger.Error("http server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("http server stopped")
}

func newCoverStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.UploadsBackend == "minio" {
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			MaxSize:   cfg.MaxUploadSize,
		})
	}
	return storage.NewDiskStore(cfg.UploadsDir, cfg.MaxUploadSize)
}

func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env != "prod" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

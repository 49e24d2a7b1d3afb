package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/config"
	"github.com/farellandr/eventhub/internal/handlers"
	"github.com/farellandr/eventhub/internal/helpers"
	"github.com/farellandr/eventhub/internal/middleware"
	"github.com/farellandr/eventhub/internal/services"
	"github.com/farellandr/eventhub/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Deps is everything the router needs. Store is nil when the database was
// unreachable at startup; data routes then answer 503.
type Deps struct {
	Store       store.Store
	Services    middleware.Services
	RateLimiter middleware.RateLimiter
	UploadDir   string
	CORSOrigins []string
	Logger      *logrus.Logger
}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	logger := config.InitLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var s store.Store
	if connected, err := config.InitStore(ctx, cfg); err != nil {
		logger.WithError(err).WithField("driver", cfg.DBDriver).Error("Database unavailable, serving in degraded mode")
	} else {
		s = connected
		logger.WithField("driver", cfg.DBDriver).Info("Database connected")
	}

	var limiter middleware.RateLimiter = middleware.NewMemoryRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, rate limiting per instance")
	} else if redisClient != nil {
		defer redisClient.Close()
		limiter = middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	var uploader helpers.ImageUploader = helpers.NewLocalUploader(cfg.UploadDir, cfg.PublicURL)
	sess, err := config.InitS3(cfg)
	if err != nil {
		return err
	}
	if sess != nil {
		uploader = helpers.NewS3Uploader(sess, cfg.AWSS3Bucket)
		logger.WithField("bucket", cfg.AWSS3Bucket).Info("Event images stored in S3")
	}

	router := NewRouter(Deps{
		Store:       s,
		Services:    NewServices(s, cfg, uploader, logger),
		RateLimiter: limiter,
		UploadDir:   cfg.UploadDir,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("Server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if s != nil {
			s.Close()
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("Server error")
	}

	if s != nil {
		if err := s.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}
	logger.Info("Server stopped")
	return nil
}

func NewServices(s store.Store, cfg *config.Config, uploader helpers.ImageUploader, logger *logrus.Logger) middleware.Services {
	return middleware.Services{
		Auth: services.NewAuthService(s, services.AuthConfig{
			Secret:   cfg.JWTSecret,
			TokenTTL: cfg.JWTExpire,
		}),
		Registrations: services.NewRegistrationService(s, logger),
		Tickets:       services.NewTicketService(s, cfg.JWTSecret),
		Uploader:      uploader,
		Logger:        logger,
	}
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORSMiddleware(deps.CORSOrigins))
	r.Use(middleware.ServicesMiddleware(deps.Services))

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Logger))
	}
	api.GET("/health", handlers.Health(deps.Store))

	setupRoutes(api, deps)
	return r
}

func setupRoutes(api *gin.RouterGroup, deps Deps) {
	requireAuth := middleware.JWTAuthMiddleware(deps.Services.Auth)
	requireDB := middleware.DatabaseMiddleware(deps.Store)

	auth := api.Group("/auth", requireDB)
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.GET("/me", requireAuth, handlers.GetProfile)
		auth.GET("/users", requireAuth, handlers.ListUsers)
	}

	api.GET("/events/categories", handlers.ListCategories)

	eventPublic := api.Group("/events", requireDB)
	{
		eventPublic.GET("", handlers.ListEvents)
		eventPublic.GET("/:id", middleware.OptionalAuthMiddleware(deps.Services.Auth), handlers.GetEvent)
	}

	eventProtected := api.Group("/events", requireDB, requireAuth)
	{
		eventProtected.POST("", handlers.CreateEvent)
		eventProtected.POST("/:id/register", handlers.RegisterForEvent)
		eventProtected.DELETE("/registration/:id", handlers.CancelRegistration)
		eventProtected.GET("/registration/:id/qr", handlers.GenerateTicketQR)
		eventProtected.GET("/user/my-registrations", handlers.MyRegistrations)
		eventProtected.GET("/all-registrations", handlers.AllRegistrations)
		eventProtected.POST("/tickets/verify", handlers.VerifyTicket)
	}
}

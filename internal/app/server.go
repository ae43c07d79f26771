// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carmatch_backend/internal/catalog"
	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/favorite"
	"carmatch_backend/internal/introduction"
	"carmatch_backend/internal/jobs"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/middleware"
	"carmatch_backend/internal/notification"
	"carmatch_backend/internal/platform/metrics"
	"carmatch_backend/internal/user"
	"carmatch_backend/internal/vehicle"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP module mounted under /api/v1.
type Handlers struct {
	User         *user.Handler
	WantListing  *listing.Handler
	Vehicle      *vehicle.Handler
	Introduction *introduction.Handler
	Notification *notification.Handler
	Favorite     *favorite.Handler
	Catalog      *catalog.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Jobs
	introductionExpiryJob *jobs.IntroductionExpiryJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	introductionExpiryJob *jobs.IntroductionExpiryJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := NewRouter(cfg, logger, handlers)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:            httpServer,
		router:                router,
		cfg:                   cfg,
		logger:                logger,
		introductionExpiryJob: introductionExpiryJob,
	}, nil
}

// NewRouter builds the gin engine with global middleware and every route.
func NewRouter(cfg *config.Config, logger *zap.Logger, handlers Handlers) *gin.Engine {
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", common.UserIDHeader, middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	requireUser := middleware.RequireUser(logger.Named("IdentityMiddleware"))
	optionalUser := middleware.OptionalUser(logger.Named("IdentityMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "CarMatch API is healthy!"})
	})
	if cfg.MetricsEnabled {
		router.GET("/metrics", metrics.Handler())
	}

	v1 := router.Group("/api/v1")
	handlers.User.RegisterRoutes(v1, requireUser)
	handlers.WantListing.RegisterRoutes(v1, requireUser, optionalUser)
	handlers.Vehicle.RegisterRoutes(v1, requireUser)
	handlers.Introduction.RegisterRoutes(v1, requireUser)
	handlers.Notification.RegisterRoutes(v1, requireUser)
	handlers.Favorite.RegisterRoutes(v1, requireUser)
	handlers.Catalog.RegisterRoutes(v1)

	return router
}

func (s *Server) Start() error {
	if s.introductionExpiryJob != nil {
		if err := s.introductionExpiryJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start introduction expiry job", zap.Error(err))
		}
	} else {
		s.logger.Info("Introduction expiry job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.introductionExpiryJob != nil {
		s.introductionExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

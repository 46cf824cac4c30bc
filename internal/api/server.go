package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/martijn/evently/docs"
	"github.com/martijn/evently/internal/api/dto"
	"github.com/martijn/evently/internal/api/handler"
	"github.com/martijn/evently/internal/api/middleware"
	"github.com/martijn/evently/internal/core/service"
	"github.com/martijn/evently/internal/metrics"
	"github.com/martijn/evently/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router      *gin.Engine
	srv         *http.Server
	config      *config.Config
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// NewServer creates a new API server. collector and gatherer may be nil when
// metrics are disabled.
func NewServer(
	cfg *config.Config,
	authService *service.AuthService,
	eventService *service.EventService,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Server {
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	if collector != nil {
		router.Use(middleware.MetricsMiddleware(collector))
	}
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	authHandler := handler.NewAuthHandler(authService)
	eventHandler := handler.NewEventHandler(eventService, cfg.DefaultPageSize, cfg.MaxPageSize)

	server := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	// Rate limiting runs after authentication on protected routes so the
	// budget is per user there and per client IP elsewhere.
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled() {
		var recorder middleware.RateLimitRecorder
		if collector != nil {
			recorder = collector
		}
		server.rateLimiter = middleware.NewRateLimiter(
			middleware.NewRateLimiterConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
			recorder,
			logger,
		)
		limit = server.rateLimiter.Middleware()
	}

	api := router.Group("/api")

	// Public routes (no auth required)
	public := api.Group("", limit)
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.GET("/events", eventHandler.ListEvents)
		public.GET("/events/:id", eventHandler.GetEvent)
	}

	// Protected routes (auth required)
	protected := api.Group("", middleware.AuthMiddleware(authService), limit)
	{
		protected.POST("/events", eventHandler.CreateEvent)
		protected.PUT("/events/:id", eventHandler.UpdateEvent)
		protected.DELETE("/events/:id", eventHandler.DeleteEvent)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().Format(time.RFC3339),
		})
	})

	if cfg.MetricsEnabled && gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start with or without SSL
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		s.logger.Info("starting HTTPS server", slog.String("addr", addr))
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}

	s.logger.Info("starting HTTP server", slog.String("addr", addr))
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

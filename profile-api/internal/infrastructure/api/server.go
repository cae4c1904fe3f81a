package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fernsky/digital-profile/profile-api/docs"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type ServerOptions struct {
	Env             string
	Port            int
	BasePath        string
	EnableSwagger   bool
	ShutdownTimeout time.Duration
}

type APIServer struct {
	server     *http.Server
	router     *gin.Engine
	handler    *APIHandler
	middleware *Middleware
	opts       ServerOptions
	logger     logger.Logger
}

func NewAPIServer(handler *APIHandler, middleware *Middleware, opts ServerOptions, log logger.Logger) *APIServer {
	gin.SetMode(gin.ReleaseMode)
	if opts.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	if opts.BasePath == "" {
		opts.BasePath = "/api/v1"
	}

	s := &APIServer{
		router:     gin.New(),
		handler:    handler,
		middleware: middleware,
		opts:       opts,
		logger:     logger.ForComponent(log, "api_server"),
	}
	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	// CORS sits on the engine so preflight requests to GET-only routes
	// are answered before routing.
	s.router.Use(s.middleware.Recovery())
	s.router.Use(s.middleware.CORS())

	api := s.router.Group(s.opts.BasePath)
	api.Use(s.middleware.Logging())
	api.Use(s.middleware.RateLimit())
	api.Use(s.middleware.Cache())

	api.GET("/health", s.handler.HealthCheck)
	api.GET("/datasets", s.handler.ListDatasets)

	summaries := api.Group("/summaries/:dataset")
	{
		summaries.GET("", s.handler.GetSummary)
		summaries.GET("/structured-data", s.handler.GetStructuredData)
		summaries.GET("/chart.png", s.handler.GetChart)
		summaries.GET("/report", s.handler.GetLatestReport)
	}

	records := api.Group("/records")
	{
		records.GET("/:dataset", s.handler.ListRecords)
		records.PUT("/:dataset/:unit", s.middleware.AdminAuth(), s.handler.PutRecord)
		records.DELETE("/:dataset/:unit", s.middleware.AdminAuth(), s.handler.DeleteRecord)
	}

	reports := api.Group("/reports")
	{
		reports.POST("/:dataset", s.handler.GenerateReport)
		reports.GET("/:id", s.handler.GetReport)
		reports.GET("/:id/download", s.handler.DownloadReport)
	}

	if s.opts.EnableSwagger {
		url := ginSwagger.URL("/swagger/doc.json")
		s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))
		s.logger.Info("Swagger documentation enabled at /swagger/index.html")
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   http.StatusText(http.StatusNotFound),
			Message: fmt.Sprintf("Route %s not found", c.Request.URL.Path),
			Time:    time.Now(),
		})
	})
}

// Handler exposes the routed engine, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Infof("Starting API server on port %d", s.opts.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	return nil
}

func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}

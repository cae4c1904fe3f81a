package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type MiddlewareOptions struct {
	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
	CacheMaxAge     time.Duration
	AdminToken      string
}

type Middleware struct {
	logger      logger.Logger
	rateLimiter *rate.Limiter
	cors        *cors.Cors
	opts        MiddlewareOptions
}

func NewMiddleware(opts MiddlewareOptions, log logger.Logger) *Middleware {
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 100
	}
	// RateLimit requests per window, with the whole budget as burst.
	limit := rate.Every(opts.RateLimitWindow / time.Duration(opts.RateLimit))

	return &Middleware{
		logger:      logger.ForComponent(log, "middleware"),
		rateLimiter: rate.NewLimiter(limit, opts.RateLimit),
		cors: cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Accept", "Accept-Language", "Authorization", "X-Requested-With"},
			ExposedHeaders:   []string{"Content-Disposition", "Content-Language"},
			AllowCredentials: false,
			MaxAge:           600,
		}),
		opts: opts,
	}
}

// CORS answers preflight requests itself and decorates the rest.
func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.cors.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (m *Middleware) Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				m.logger.Error(e)
			}
			return
		}
		m.logger.Infof("HTTP | %3d | %13v | %15s | %-7s %s",
			c.Writer.Status(),
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

func (m *Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.rateLimiter.Allow() {
			m.logger.Warnf("Rate limit exceeded for IP: %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   http.StatusText(http.StatusTooManyRequests),
				Message: "Rate limit exceeded",
				Time:    time.Now(),
			})
			return
		}
		c.Next()
	}
}

// Cache marks successful GET responses as publicly cacheable. Everything
// else is marked no-store.
func (m *Middleware) Cache() gin.HandlerFunc {
	maxAge := int(m.opts.CacheMaxAge.Seconds())
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && maxAge > 0 {
			c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			c.Header("Vary", "Accept-Language")
		} else {
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	}
}

// AdminAuth guards record mutations with a bearer token. An empty token
// disables the check.
func (m *Middleware) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.opts.AdminToken == "" {
			c.Next()
			return
		}
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token != m.opts.AdminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   http.StatusText(http.StatusUnauthorized),
				Message: "valid admin token is required",
				Time:    time.Now(),
			})
			return
		}
		c.Next()
	}
}

func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.Errorf("Panic recovered: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   http.StatusText(http.StatusInternalServerError),
					Message: "An unexpected error occurred",
					Time:    time.Now(),
				})
			}
		}()
		c.Next()
	}
}

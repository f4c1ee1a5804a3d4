// Package httpapi wires the console HTTP API: middleware, the console
// endpoints and the ops routes (health, metrics, swagger).
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. AccessLog (request-scoped logger, redaction)
//  4. Recovery
//  5. Body size limit
//  6. Metrics
//  7. Idempotency validator (before the rate limiter so replays bypass it)
//  8. Rate limiter (per session, else per IP)
//  9. CORS, security headers, gzip
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/rental-console/docs" // swagger spec registration
	"github.com/tbourn/rental-console/internal/config"
	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/http/handlers"
	"github.com/tbourn/rental-console/internal/http/middleware"
	"github.com/tbourn/rental-console/internal/repo"
	"github.com/tbourn/rental-console/internal/services"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 16 << 20
)

// consoleSessions adapts *services.Manager to handlers.Sessions.
type consoleSessions struct{ m *services.Manager }

func (c consoleSessions) Open(ctx context.Context, user domain.User, location string) (handlers.Session, error) {
	s, err := c.m.Open(ctx, user, location)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c consoleSessions) Get(id string) (handlers.Session, error) {
	s, err := c.m.Get(id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c consoleSessions) End(ctx context.Context, id string) error { return c.m.End(ctx, id) }

// replayLookup reports whether key already created a ticket in the session.
// The record is owned by the session's operator.
func replayLookup(m *services.Manager, db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, sessionID, key string, now time.Time) (bool, error) {
		s, err := m.Get(sessionID)
		if err != nil {
			return false, nil
		}
		_, err = repo.GetIdempotency(ctx, db, repo.ReplayKey{UserID: s.User.Username, SessionID: sessionID, Key: key}, now)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

// RegisterRoutes attaches middleware, the console API under
// cfg.APIBasePath and the ops routes to r.
func RegisterRoutes(r *gin.Engine, m *services.Manager, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxJSONBody, maxMultipartBody))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, replayLookup(m, db)))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP(), nil)
	r.Use(rl.Handler())

	r.Use(corsPolicy(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": m.Len()})
	})
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(consoleSessions{m: m})
	h.Mount(groupWithPrefix(r, cfg.APIBasePath))
}

// corsPolicy allows every origin when none is configured, otherwise only the
// listed ones.
func corsPolicy(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"X-Request-ID", "ETag", "Retry-After", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

// limitBody caps request bodies. Multipart uploads get the larger cap.
func limitBody(jsonMax, multipartMax int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := jsonMax
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = multipartMax
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

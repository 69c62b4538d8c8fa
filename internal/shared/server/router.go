package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers wired by bootstrap. Nil handlers are skipped.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Limiter  *middleware.RateLimiter
	Health   *health.Service

	// Public are reachable without a token (login, billing webhook).
	Public []RouteRegistrar
	// Private require an authenticated user.
	Private []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	api.GET("/metrics", metrics.Handler())

	for _, h := range deps.Public {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	private := api.Group("")
	private.Use(
		middleware.RequireUser(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRateLimitRules(),
			GroupFor: middleware.RateGroupForPath,
			Limiter:  deps.Limiter,
		}),
	)
	for _, h := range deps.Private {
		if h != nil {
			h.RegisterRoutes(private)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

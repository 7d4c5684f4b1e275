package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gbp-backend/internal/analyses"
	"gbp-backend/internal/shared/config"
	"gbp-backend/internal/shared/metrics"
	"gbp-backend/internal/shared/server/middleware"
	"gbp-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: 0.2, Burst: 3},
				"STATUS":  {Rate: 2, Burst: 10},
			},
			GroupFor: routeGroup,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	r.GET("/metrics", metrics.Handler())

	return r
}

// routeGroup buckets the expensive analysis endpoints separately from
// the cheap polling ones.
func routeGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/analyze"):
		return "ANALYZE"
	case strings.HasPrefix(path, "/api/v1/check-status"):
		return "STATUS"
	default:
		return ""
	}
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

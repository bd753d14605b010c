// Package http assembles the gin router and HTTP server for SiteTrack's API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/infrastructure/auth"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/prometheus"
	"github.com/buildmind/sitetrack/internal/interfaces/http/handlers"
	"github.com/buildmind/sitetrack/internal/interfaces/http/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Tokens  *auth.TokenManager
	Metrics *prometheus.Metrics
	Logger  logging.Logger

	Auth      *handlers.AuthHandler
	Tasks     *handlers.TaskHandler
	Issues    *handlers.IssueHandler
	Projects  *handlers.ProjectHandler
	Calendar  *handlers.CalendarHandler
	Documents *handlers.DocumentHandler
	Inbox     *handlers.InboxHandler
	Users     *handlers.UserHandler
	Health    *handlers.HealthHandler
}

// NewRouter builds the full route tree. Probes, metrics, and login are
// public; everything under /api/v1 requires a bearer token.
func NewRouter(cfg config.ServerConfig, deps RouterDeps) *gin.Engine {
	gin.SetMode(ginMode(cfg.Mode))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RateLimit(float64(cfg.RateLimitRPS), cfg.RateLimitBurst))

	deps.Health.Register(r)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	public := r.Group("/api/v1")
	deps.Auth.Register(public)

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(deps.Tokens))
	deps.Tasks.Register(api)
	deps.Issues.Register(api)
	deps.Projects.Register(api)
	deps.Calendar.Register(api)
	deps.Documents.Register(api)
	deps.Inbox.Register(api)
	deps.Users.Register(api)

	return r
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

package handler

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/localspot/social-core/config"
	"github.com/localspot/social-core/pkg/middleware"
	"github.com/localspot/social-core/pkg/response"
)

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(cfg *config.Config, h *Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// reads: anonymous allowed, token honored when present
	reads := v1.Group("")
	reads.Use(middleware.OptionalActor(cfg.Auth.JWTSecret))
	{
		reads.GET("/feed", h.GetFeed)
		reads.GET("/follow/stats/:id", h.Stats)
		reads.GET("/follow/:id/followers", h.Followers)
		reads.GET("/follow/:id/following", h.Following)
	}

	// mutations: authenticated and rate limited
	writes := v1.Group("")
	writes.Use(middleware.RequireActor(cfg.Auth.JWTSecret))
	writes.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	{
		writes.POST("/follow", h.Follow)
		writes.DELETE("/follow", h.Unfollow)
		writes.GET("/follow/check", h.IsFollowing)
		writes.POST("/posts", h.CreatePost)
		writes.POST("/surveys", h.CreateSurvey)
		writes.POST("/surveys/:id/vote", h.VoteSurvey)
	}

	return r
}

package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/gin-twitter/docs"
	"github.com/d60-Lab/gin-twitter/internal/api/handler"
	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/pkg/auth"
)

type RouterOptions struct {
	Tokens      *auth.Manager
	RateLimiter *middleware.IPRateLimiter // nil 表示不限流
	ServiceName string
	Sentry      bool
	Tracing     bool
}

// NewRouter 注册全部路由
func NewRouter(h *handler.Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middleware.Metrics(), middleware.AccessLog(), gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	if opts.RateLimiter != nil {
		v1.Use(middleware.RateLimit(opts.RateLimiter))
	}
	authed := middleware.Auth(opts.Tokens)

	users := v1.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.DELETE("/me", authed, h.Deactivate)
		users.GET("/:id", h.GetUser)
	}

	relations := v1.Group("/relations")
	{
		relations.POST("/follow", authed, h.Follow)
		relations.POST("/unfollow", authed, h.Unfollow)
		relations.GET("/:user_id/followings", h.ListFollowings)
		relations.GET("/:user_id/followers", h.ListFollowers)
	}

	v1.GET("/feed", authed, h.ListFeed)

	tweets := v1.Group("/tweets")
	{
		tweets.POST("", authed, h.CreateTweet)
		tweets.GET("", h.ListTweets)
		tweets.GET("/:id", h.GetTweet)
		tweets.DELETE("/:id", authed, h.DeleteTweet)
		tweets.GET("/:id/comments", h.ListComments)
		tweets.POST("/:id/comments", authed, h.CreateComment)
	}

	v1.PUT("/comments/:id", authed, h.UpdateComment)
	v1.DELETE("/comments/:id", authed, h.DeleteComment)
	v1.POST("/likes", authed, h.Like)
	v1.DELETE("/likes/:kind/:id", authed, h.Unlike)

	return r
}

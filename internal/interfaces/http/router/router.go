// Package router 提供 HTTP 路由配置
package router

import (
	"storyweave-api/internal/config"
	"storyweave-api/internal/interfaces/http/handler"
	"storyweave-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health     *handler.HealthHandler
	Generation *handler.GenerationHandler
	Provider   *handler.ProviderHandler
	Story      *handler.StoryHandler
	User       *handler.UserHandler
	Usage      *handler.UsageHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 限流中间件
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, r.limiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	{
		// 生成相关路由
		generate := v1.Group("/generate")
		{
			generate.POST("/text", r.handlers.Generation.GenerateText)
			generate.POST("/image", r.handlers.Generation.GenerateImage)
			generate.POST("/audio", r.handlers.Generation.GenerateAudio)
			generate.POST("/combined", r.handlers.Generation.GenerateCombined)
			generate.POST("/choices", r.handlers.Generation.GenerateChoices)
		}
		v1.POST("/moderate", r.handlers.Generation.Moderate)
		v1.POST("/estimate", r.handlers.Generation.Estimate)

		// 提供商相关路由
		providers := v1.Group("/providers")
		{
			providers.GET("", r.handlers.Provider.List)
			providers.GET("/best", r.handlers.Provider.Best)
			providers.GET("/:pid/status", r.handlers.Provider.Status)
			providers.GET("/:pid/models", r.handlers.Provider.Models)
			providers.POST("/:pid/test", r.handlers.Provider.Test)
		}

		// 故事相关路由
		stories := v1.Group("/stories")
		{
			stories.POST("", r.handlers.Story.Create)
			stories.GET("", r.handlers.Story.List)
			stories.GET("/:id", r.handlers.Story.Get)
			stories.PUT("/:id", r.handlers.Story.Update)
			stories.DELETE("/:id", r.handlers.Story.Delete)
			stories.GET("/:id/contents", r.handlers.Story.ListContents)
			stories.POST("/:id/continue", r.handlers.Story.Continue)
			stories.POST("/:id/choices/select", r.handlers.Story.SelectChoice)
		}

		// 用户相关路由
		users := v1.Group("/users")
		{
			users.POST("", r.handlers.User.Create)
			users.GET("/:id", r.handlers.User.Get)
			users.PUT("/:id", r.handlers.User.Update)
			users.DELETE("/:id", r.handlers.User.Delete)
			users.POST("/:id/deactivate", r.handlers.User.Deactivate)
			users.GET("/:id/usage/summary", r.handlers.Usage.Summary)
			users.GET("/:id/usage/events", r.handlers.Usage.ListEvents)
		}
	}
}

// Package router 提供 HTTP 路由配置
package router

import (
	"orchestrai-web/internal/config"
	"orchestrai-web/internal/interfaces/http/handler"
	"orchestrai-web/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterHandlers 路由依赖的处理器集合
type RouterHandlers struct {
	Health  *handler.HealthHandler
	Layout  *handler.LayoutHandler
	Session *handler.SessionHandler
	Tenant  *handler.TenantHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers RouterHandlers
	limiter  middleware.RateLimiter
}

// NewWithDeps 创建路由器，limiter 为 nil 时不启用全局限流
func NewWithDeps(cfg *config.Config, handlers RouterHandlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(handler.LayoutTemplate())

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

// TenantConfig 由配置构建租户中间件配置
func TenantConfig(cfg *config.Config) middleware.TenantConfig {
	return middleware.TenantConfig{
		Cookie:         cfg.Tenant.CookieSpec(),
		HeaderName:     cfg.Tenant.HeaderName,
		Policy:         cfg.Tenant.Policy(),
		PublicPrefixes: cfg.Tenant.PublicPrefixes,
	}
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
		TenantHeader:   r.cfg.Tenant.HeaderName,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, middleware.DefaultAuditSkipPaths...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 租户解析需在审计与限流之前，二者都按租户记录
	r.engine.Use(middleware.TenantResolver(TenantConfig(r.cfg)))
	r.engine.Use(middleware.Audit(middleware.AuditConfig{
		Enabled:   true,
		SkipPaths: middleware.DefaultAuditSkipPaths,
	}))
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
	}, r.limiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.engine.GET("/", h.Layout.Render)

	RegisterV1Routes(r.engine.Group("/api/v1"), h, TenantConfig(r.cfg))
}

// Package router 提供 HTTP 路由配置
package router

import (
	"orchestrai-web/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h RouterHandlers, tenantCfg middleware.TenantConfig) {
	v1.GET("/health", h.Health.APIHealth)

	// 会话租户
	session := v1.Group("/session")
	{
		session.GET("", h.Session.GetSession)
		session.PUT("/tenant", h.Session.SwitchTenant)
		session.DELETE("/tenant", h.Session.ClearTenant)
	}

	// 租户目录
	tenants := v1.Group("/tenants")
	{
		tenants.GET("", h.Tenant.ListTenants)
		tenants.GET("/current", middleware.RequireTenant(tenantCfg), h.Tenant.GetCurrentTenant)
		tenants.GET("/:id", h.Tenant.GetTenant)
	}
}

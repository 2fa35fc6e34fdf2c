// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"orchestrai-web/internal/interfaces/http/dto"
	apperrors "orchestrai-web/pkg/errors"
	"orchestrai-web/pkg/logger"
	"orchestrai-web/pkg/metrics"
	"orchestrai-web/pkg/tenancy"
)

const (
	// TenantIDKey Gin Context 中的租户 ID 键
	TenantIDKey = "tenant_id"
	// TenantBindingKey Gin Context 中的请求级 Binding 键
	TenantBindingKey = "tenant_binding"
)

// ErrHeadersWritten 响应头已发送，无法再写 Cookie
var ErrHeadersWritten = errors.New("response headers already written")

// TenantConfig 租户中间件配置
type TenantConfig struct {
	Cookie tenancy.CookieSpec
	// HeaderName 显式指定租户的请求头
	HeaderName string
	Policy     tenancy.ReconcilePolicy
	// PublicPrefixes 无需租户的路径前缀
	PublicPrefixes []string
}

func (cfg TenantConfig) withDefaults() TenantConfig {
	if cfg.Cookie.Name == "" {
		cfg.Cookie = tenancy.DefaultCookieSpec()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = tenancy.CookieName
	}
	return cfg
}

// TenantResolver 从 Cookie 解析租户并创建请求级 Binding
// Binding 通过 Gin Context 与 request context 显式下传，写入时设置 Set-Cookie。
func TenantResolver(cfg TenantConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()

	return func(c *gin.Context) {
		tenantID := cfg.Cookie.Resolve(c.Request)
		metrics.TenantResolutionsTotal.WithLabelValues("cookie", metrics.ResolutionResult(tenantID)).Inc()

		b := tenancy.NewBinding(tenantID, CookiePersister(c, cfg.Cookie), tenancy.WithPolicy(cfg.Policy))
		b.Subscribe(func(_, updated string) {
			c.Set(TenantIDKey, updated)
			c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), logger.TenantIDKey, updated))
		})

		c.Set(TenantIDKey, tenantID)
		c.Set(TenantBindingKey, b)

		ctx := tenancy.WithBinding(c.Request.Context(), b)
		ctx = logger.WithContext(ctx, logger.TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CookiePersister 返回写 Set-Cookie 响应头的 Persister
// 同一请求内多次写入只保留最后一个同名 Cookie。
func CookiePersister(c *gin.Context, spec tenancy.CookieSpec) tenancy.Persister {
	return tenancy.PersisterFunc(func(tenantID string) error {
		cookie, err := spec.EncodeCookie(tenantID)
		if err != nil {
			return err
		}
		if c.Writer.Written() {
			return ErrHeadersWritten
		}

		header := c.Writer.Header()
		prefix := spec.Name + "="
		var kept []string
		for _, v := range header.Values("Set-Cookie") {
			if !strings.HasPrefix(v, prefix) {
				kept = append(kept, v)
			}
		}
		header.Del("Set-Cookie")
		for _, v := range kept {
			header.Add("Set-Cookie", v)
		}

		http.SetCookie(c.Writer, cookie)
		return nil
	})
}

// RequireTenant 要求请求带有租户
// 优先读取请求头，其次读取 Cookie 解析出的 Binding；公共路径跳过检查。
func RequireTenant(cfg TenantConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()

	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path, cfg.PublicPrefixes) {
			c.Next()
			return
		}

		source := "header"
		tenantID := c.GetHeader(cfg.HeaderName)
		if tenantID == "" {
			source = "binding"
			tenantID = GetTenantIDFromGin(c)
		}
		metrics.TenantResolutionsTotal.WithLabelValues(source, metrics.ResolutionResult(tenantID)).Inc()

		if tenantID == "" {
			dto.FromError(c, apperrors.ErrTenantRequired)
			c.Abort()
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), logger.TenantIDKey, tenantID))
		c.Next()
	}
}

func isPublicPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// GetBinding 从 Gin Context 获取请求级 Binding
func GetBinding(c *gin.Context) (*tenancy.Binding, bool) {
	v, ok := c.Get(TenantBindingKey)
	if !ok {
		return nil, false
	}
	b, ok := v.(*tenancy.Binding)
	return b, ok && b != nil
}

// GetTenantID 从 context 中获取租户 ID
func GetTenantID(ctx context.Context) string {
	return tenancy.TenantID(ctx)
}

// GetTenantIDFromGin 从 Gin Context 中获取租户 ID
func GetTenantIDFromGin(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// Package tenancy 提供租户标识在服务端渲染与客户端会话之间的传递
package tenancy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// CookieName 租户 Cookie 名称
	CookieName = "X-Tenant-Id"
	// CookiePath 租户 Cookie 路径
	CookiePath = "/"
	// CookieMaxAge 租户 Cookie 有效期（秒），一年
	CookieMaxAge = 31536000
)

// ErrCookieInvalid 租户 ID 无法原样写入 Cookie
var ErrCookieInvalid = errors.New("tenancy: tenant id cannot be stored in cookie")

// CookieSpec 租户 Cookie 的写入属性
type CookieSpec struct {
	Name     string
	Path     string
	MaxAge   int
	SameSite http.SameSite
	Secure   bool
	Domain   string
}

// DefaultCookieSpec 返回默认 Cookie 属性
func DefaultCookieSpec() CookieSpec {
	return CookieSpec{
		Name:     CookieName,
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		SameSite: http.SameSiteStrictMode,
	}
}

// Cookie 构造持久化租户 ID 的 Cookie
func (s CookieSpec) Cookie(tenantID string) *http.Cookie {
	s = s.withDefaults()
	return &http.Cookie{
		Name:     s.Name,
		Value:    tenantID,
		Path:     s.Path,
		Domain:   s.Domain,
		MaxAge:   s.MaxAge,
		Secure:   s.Secure,
		SameSite: s.SameSite,
	}
}

// EncodeCookie 构造并校验 Cookie
// 值含 net/http 写出时会丢弃的字节（非 ASCII、双引号、分号、反斜杠）时返回 ErrCookieInvalid。
func (s CookieSpec) EncodeCookie(tenantID string) (*http.Cookie, error) {
	cookie := s.Cookie(tenantID)
	if err := cookie.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCookieInvalid, err)
	}
	return cookie, nil
}

// withDefaults 为零值字段补默认值
func (s CookieSpec) withDefaults() CookieSpec {
	def := DefaultCookieSpec()
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.Path == "" {
		s.Path = def.Path
	}
	if s.MaxAge == 0 {
		s.MaxAge = def.MaxAge
	}
	if s.SameSite == 0 {
		s.SameSite = def.SameSite
	}
	return s
}

// ParseSameSite 解析配置中的 SameSite 取值，未知值按 Strict 处理
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteStrictMode
	}
}

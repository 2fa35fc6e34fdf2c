package tenancy

import "net/http"

// CookieSource 可按名称读取 Cookie 的请求，*http.Request 即满足
type CookieSource interface {
	Cookie(name string) (*http.Cookie, error)
}

// Resolve 从请求 Cookie 中读取租户 ID
// Cookie 不存在时返回空字符串，不做任何校验或解码
func (s CookieSpec) Resolve(src CookieSource) string {
	if src == nil {
		return ""
	}
	c, err := src.Cookie(s.withDefaults().Name)
	if err != nil || c == nil {
		return ""
	}
	return c.Value
}

// ResolveCookies 从 Cookie 列表中读取租户 ID，同名多个时取第一个
func (s CookieSpec) ResolveCookies(cookies []*http.Cookie) string {
	name := s.withDefaults().Name
	for _, c := range cookies {
		if c != nil && c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Resolve 使用默认 Cookie 属性解析租户 ID
func Resolve(src CookieSource) string {
	return DefaultCookieSpec().Resolve(src)
}

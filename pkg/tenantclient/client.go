// Package tenantclient 提供持有租户上下文的 HTTP 客户端会话
//
// Client 模拟一个浏览器标签页：Cookie 罐保存 X-Tenant-Id，Binding 保存当前租户，
// 本地写入落到 Cookie 罐，下一次请求即携带新值。
package tenantclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"orchestrai-web/pkg/tenancy"
)

const (
	sessionPath       = "/api/v1/session"
	sessionTenantPath = "/api/v1/session/tenant"
	currentTenantPath = "/api/v1/tenants/current"
)

// Client 租户会话客户端，可并发使用
type Client struct {
	baseURL *url.URL
	http    *http.Client
	spec    tenancy.CookieSpec
	policy  tenancy.ReconcilePolicy

	mu      sync.Mutex
	binding *tenancy.Binding
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 使用指定的 http.Client，未设置 Jar 时自动创建
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCookieSpec 设置租户 Cookie 属性
func WithCookieSpec(spec tenancy.CookieSpec) Option {
	return func(c *Client) {
		c.spec = spec
	}
}

// WithPolicy 设置 Reconcile 策略
func WithPolicy(p tenancy.ReconcilePolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// New 创建客户端
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		baseURL: u,
		spec:    tenancy.DefaultCookieSpec(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Jar 返回客户端使用的 Cookie 罐
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// Bootstrap 读取服务端解析出的租户，首次调用时构造 Binding，之后执行 Reconcile
func (c *Client) Bootstrap(ctx context.Context) (string, error) {
	var resp struct {
		TenantID string `json:"tenant_id"`
	}
	if err := c.do(ctx, http.MethodGet, sessionPath, nil, &resp); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.binding == nil {
		c.binding = tenancy.NewBinding(resp.TenantID, c.persister(), tenancy.WithPolicy(c.policy))
	} else {
		c.binding.Reconcile(resp.TenantID)
	}
	return c.binding.Read(), nil
}

// TenantID 返回当前租户，未 Bootstrap 时读取 Cookie 罐
func (c *Client) TenantID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureBinding().Read()
}

// SetTenantID 写入新租户并保存到 Cookie 罐，返回值是否改变
// Cookie 罐写入失败时内存值仍会更新，错误随返回值给出。
func (c *Client) SetTenantID(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.ensureBinding()
	changed := b.Write(id)
	if !changed {
		return false, nil
	}
	return true, b.PersistErr()
}

// Pending 本地写入是否尚未被服务端确认
func (c *Client) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureBinding().Pending()
}

// Subscribe 注册租户变更监听
// 回调在客户端锁内执行，不能再调用 Client 的方法。
func (c *Client) Subscribe(fn func(old, updated string)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancel := c.ensureBinding().Subscribe(fn)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		cancel()
	}
}

// SwitchResult 服务端切换结果
type SwitchResult struct {
	TenantID  string `json:"tenant_id"`
	Changed   bool   `json:"changed"`
	Persisted bool   `json:"persisted"`
}

// SyncTenant 通过会话接口把当前租户提交给服务端，并以返回值 Reconcile
func (c *Client) SyncTenant(ctx context.Context) (*SwitchResult, error) {
	body, err := json.Marshal(map[string]string{"tenant_id": c.TenantID()})
	if err != nil {
		return nil, err
	}

	var res SwitchResult
	if err := c.do(ctx, http.MethodPut, sessionTenantPath, body, &res); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBinding().Reconcile(res.TenantID)
	return &res, nil
}

// Tenant 租户资料
type Tenant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	LicenseType string   `json:"license_type"`
	Domains     []string `json:"domains"`
	Status      string   `json:"status"`
}

// CurrentTenant 获取当前会话租户的资料
func (c *Client) CurrentTenant(ctx context.Context) (*Tenant, error) {
	var t Tenant
	if err := c.do(ctx, http.MethodGet, currentTenantPath, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ensureBinding 调用方需持有锁
func (c *Client) ensureBinding() *tenancy.Binding {
	if c.binding == nil {
		initial := c.spec.ResolveCookies(c.http.Jar.Cookies(c.baseURL))
		c.binding = tenancy.NewBinding(initial, c.persister(), tenancy.WithPolicy(c.policy))
	}
	return c.binding
}

func (c *Client) persister() tenancy.Persister {
	return tenancy.PersisterFunc(func(id string) error {
		if c.http.Jar == nil {
			return tenancy.ErrPersistUnavailable
		}
		cookie, err := c.spec.EncodeCookie(id)
		if err != nil {
			return err
		}
		c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{cookie})
		return nil
	})
}

// APIError 服务端错误响应
type APIError struct {
	Status    int
	Message   string
	ErrorCode string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("tenantclient: %d %s (%s)", e.Status, e.Message, e.ErrorCode)
	}
	return fmt.Sprintf("tenantclient: %d %s", e.Status, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"error_code"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("tenantclient: decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.ErrorCode = env.Error.ErrorCode
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

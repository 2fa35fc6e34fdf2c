package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrai-web/internal/interfaces/http/dto"
	apperrors "orchestrai-web/pkg/errors"
	"orchestrai-web/pkg/tenancy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTenantEngine(cfg TenantConfig, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(TenantResolver(cfg))
	r.GET("/t", h)
	return r
}

func TestTenantResolver_ResolvesCookie(t *testing.T) {
	var seen string
	var fromCtx string
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		b, ok := GetBinding(c)
		require.True(t, ok)
		seen = b.Read()
		fromCtx = GetTenantID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.AddCookie(&http.Cookie{Name: "X-Tenant-Id", Value: "acme"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "acme", seen)
	assert.Equal(t, "acme", fromCtx)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestTenantResolver_AbsentCookieIsSentinel(t *testing.T) {
	var seen = "unset"
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		seen = GetTenantIDFromGin(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.Equal(t, "", seen)
}

func TestTenantResolver_WriteSetsCookie(t *testing.T) {
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		b, _ := GetBinding(c)
		assert.True(t, b.Write("globex"))
		assert.Equal(t, "globex", GetTenantIDFromGin(c))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.AddCookie(&http.Cookie{Name: "X-Tenant-Id", Value: "acme"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, []string{"X-Tenant-Id=globex; Path=/; Max-Age=31536000; SameSite=Strict"}, w.Header().Values("Set-Cookie"))
}

func TestTenantResolver_NoopWriteSetsNothing(t *testing.T) {
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		b, _ := GetBinding(c)
		assert.False(t, b.Write("acme"))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.AddCookie(&http.Cookie{Name: "X-Tenant-Id", Value: "acme"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestTenantResolver_RepeatedWritesKeepLastCookie(t *testing.T) {
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		c.SetCookie("other", "1", 60, "/", "", false, false)
		b, _ := GetBinding(c)
		b.Write("acme")
		b.Write("globex")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "other", cookies[0].Name)
	assert.Equal(t, "X-Tenant-Id", cookies[1].Name)
	assert.Equal(t, "globex", cookies[1].Value)
}

func TestTenantResolver_WriteAfterBodyFailsPersist(t *testing.T) {
	var persistErr error
	var held string
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		c.String(http.StatusOK, "body")
		b, _ := GetBinding(c)
		b.Write("globex")
		persistErr = b.PersistErr()
		held = b.Read()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

	assert.ErrorIs(t, persistErr, ErrHeadersWritten)
	assert.Equal(t, "globex", held)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestTenantResolver_UnencodableIDFailsPersist(t *testing.T) {
	var persistErr error
	var held string
	r := newTenantEngine(TenantConfig{}, func(c *gin.Context) {
		b, _ := GetBinding(c)
		assert.True(t, b.Write("ü-tenant"))
		persistErr = b.PersistErr()
		held = b.Read()
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.AddCookie(&http.Cookie{Name: "X-Tenant-Id", Value: "acme"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.ErrorIs(t, persistErr, tenancy.ErrCookieInvalid)
	assert.Equal(t, "ü-tenant", held)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestTenantResolver_CustomCookieSpec(t *testing.T) {
	spec := tenancy.DefaultCookieSpec()
	spec.Secure = true
	spec.Domain = "example.com"
	r := newTenantEngine(TenantConfig{Cookie: spec}, func(c *gin.Context) {
		b, _ := GetBinding(c)
		b.Write("acme")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, "example.com", cookies[0].Domain)
}

func newGuardedEngine() *gin.Engine {
	cfg := TenantConfig{PublicPrefixes: []string{"/api/v1/auth", "/docs"}}
	r := gin.New()
	r.Use(TenantResolver(cfg), RequireTenant(cfg))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant_id": GetTenantIDFromGin(c)})
	}
	r.GET("/api/v1/tenants/current", handler)
	r.GET("/api/v1/auth/login", handler)
	return r
}

func TestRequireTenant(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		cookie     string
		wantStatus int
		wantTenant string
	}{
		{name: "header", path: "/api/v1/tenants/current", header: "acme", wantStatus: http.StatusOK, wantTenant: "acme"},
		{name: "header wins over cookie", path: "/api/v1/tenants/current", header: "acme", cookie: "globex", wantStatus: http.StatusOK, wantTenant: "acme"},
		{name: "cookie binding", path: "/api/v1/tenants/current", cookie: "globex", wantStatus: http.StatusOK, wantTenant: "globex"},
		{name: "missing", path: "/api/v1/tenants/current", wantStatus: http.StatusBadRequest},
		{name: "public prefix", path: "/api/v1/auth/login", wantStatus: http.StatusOK, wantTenant: ""},
	}

	r := newGuardedEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("X-Tenant-Id", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "X-Tenant-Id", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantTenant, body["tenant_id"])
			} else {
				assert.Equal(t, "X-Tenant-Id header is required", body["message"])
			}
		})
	}
}

func TestRequireTenant_UsesErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	newGuardedEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tenants/current", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	want := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(want)
	dto.FromError(c, apperrors.ErrTenantRequired)
	var expected dto.ErrorResponse
	require.NoError(t, json.Unmarshal(want.Body.Bytes(), &expected))

	assert.Equal(t, expected, got)
	require.NotNil(t, got.Error)
	assert.Equal(t, "3001", got.Error.ErrorCode)
}

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrai-web/pkg/logger"
)

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("keeps upstream id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Body.String())
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Len(t, w.Body.String(), 36)
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func TestRateLimit(t *testing.T) {
	newEngine := func(l RateLimiter) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(TenantIDKey, "acme")
			c.Next()
		})
		r.Use(RateLimit(RateLimitConfig{Enabled: true}, l))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	t.Run("rejects", func(t *testing.T) {
		l := &stubLimiter{allowed: false}
		w := httptest.NewRecorder()
		newEngine(l).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		require.Len(t, l.keys, 1)
		assert.Equal(t, "ratelimit:acme:/x", l.keys[0])
	})

	t.Run("fails open", func(t *testing.T) {
		l := &stubLimiter{err: errors.New("redis down")}
		w := httptest.NewRecorder()
		newEngine(l).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		r := gin.New()
		r.Use(RateLimit(RateLimitConfig{}, &stubLimiter{}))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestAudit_SkipsDisabled(t *testing.T) {
	r := gin.New()
	r.Use(Audit(AuditConfig{Enabled: true, SkipPaths: DefaultAuditSkipPaths}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAudit_LogsContextKeysOnce(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "info", "json")
	t.Cleanup(func() { logger.InitWithWriter(io.Discard, "info", "json") })

	r := gin.New()
	r.Use(RequestID(), TenantResolver(TenantConfig{}), Audit(AuditConfig{Enabled: true}))
	r.PUT("/switch", func(c *gin.Context) {
		b, _ := GetBinding(c)
		b.Write("globex")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPut, "/switch", nil)
	req.Header.Set(RequestIDHeader, "req-audit")
	req.AddCookie(&http.Cookie{Name: "X-Tenant-Id", Value: "acme"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line string
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(l, `"msg":"api audit"`) {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Equal(t, 1, strings.Count(line, `"tenant_id":`))
	assert.Equal(t, 1, strings.Count(line, `"request_id":`))

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "globex", record["tenant_id"])
	assert.Equal(t, "req-audit", record["request_id"])
	assert.Equal(t, "acme", record["previous_tenant_id"])
}

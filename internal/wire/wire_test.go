package wire

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrai-web/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMemoryApp(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("TENANT_DIRECTORY_BACKEND", "memory")
	cfg, err := config.LoadFrom(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Tenant.Directory.Backend)
	require.True(t, cfg.Tenant.Directory.VerifyOnSwitch)
	cfg.Cache.Redis.Enabled = false

	r, cleanup, err := InitializeApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return r.Engine()
}

func TestInitializeApp_MemoryBackendSwitchesToDemoTenant(t *testing.T) {
	h := newMemoryApp(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/session/tenant", strings.NewReader(`{"tenant_id":"acme"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"X-Tenant-Id=acme; Path=/; Max-Age=31536000; SameSite=Strict"}, w.Header().Values("Set-Cookie"))
}

func TestInitializeApp_MemoryBackendListsDemoTenants(t *testing.T) {
	h := newMemoryApp(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tenants", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Meta.Total)

	var slugs []string
	for _, tnt := range body.Data {
		assert.Equal(t, tnt.Slug, tnt.ID)
		slugs = append(slugs, tnt.Slug)
	}
	assert.ElementsMatch(t, []string{"acme", "globex"}, slugs)
}

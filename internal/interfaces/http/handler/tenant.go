// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	tenantapp "orchestrai-web/internal/application/tenant"
	"orchestrai-web/internal/interfaces/http/dto"
	"orchestrai-web/internal/interfaces/http/middleware"
	"orchestrai-web/pkg/logger"
)

// TenantHandler 租户目录处理器
type TenantHandler struct {
	directory *tenantapp.Directory
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(directory *tenantapp.Directory) *TenantHandler {
	return &TenantHandler{directory: directory}
}

// ListTenants 获取活跃租户列表
// @Summary 租户列表
// @Description 分页返回活跃租户
// @Tags Tenants
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.TenantResponse]
// @Router /v1/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	result, err := h.directory.List(ctx, page.Pagination())
	if err != nil {
		logger.Error(ctx, "failed to list tenants", err)
		dto.FromError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToTenantResponses(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// GetTenant 获取租户详情
// @Summary 租户详情
// @Tags Tenants
// @Produce json
// @Param id path string true "租户 ID"
// @Success 200 {object} dto.Response[dto.TenantResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	h.respondTenant(c, dto.BindTenantID(c))
}

// GetCurrentTenant 获取当前租户信息
// @Summary 获取当前租户资料
// @Description 租户取自 X-Tenant-Id 请求头或 Cookie
// @Tags Tenants
// @Produce json
// @Success 200 {object} dto.Response[dto.TenantResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/tenants/current [get]
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	h.respondTenant(c, middleware.GetTenantIDFromGin(c))
}

func (h *TenantHandler) respondTenant(c *gin.Context, id string) {
	tenant, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		dto.FromError(c, err)
		return
	}
	dto.Success(c, dto.ToTenantResponse(tenant))
}

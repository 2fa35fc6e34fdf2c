package handler

import (
	"github.com/gin-gonic/gin"

	tenantapp "orchestrai-web/internal/application/tenant"
	"orchestrai-web/internal/interfaces/http/dto"
	"orchestrai-web/internal/interfaces/http/middleware"
	"orchestrai-web/pkg/logger"
	"orchestrai-web/pkg/tracer"
)

// SessionHandler 会话租户处理器
type SessionHandler struct {
	switcher *tenantapp.SwitchService
}

// NewSessionHandler 创建会话租户处理器
func NewSessionHandler(switcher *tenantapp.SwitchService) *SessionHandler {
	return &SessionHandler{switcher: switcher}
}

// GetSession 获取会话租户
// @Summary 获取会话租户
// @Description 返回本次请求由 X-Tenant-Id Cookie 解析出的租户 ID，未设置时为空字符串
// @Tags Session
// @Produce json
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Router /v1/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	b, ok := middleware.GetBinding(c)
	if !ok {
		logger.Error(c.Request.Context(), "tenant binding missing", nil)
		dto.InternalError(c, "tenant binding not available")
		return
	}
	dto.Success(c, &dto.SessionResponse{TenantID: b.Read()})
}

// SwitchTenant 切换会话租户
// @Summary 切换会话租户
// @Description 写入新的租户 ID，值改变时设置 X-Tenant-Id Cookie
// @Tags Session
// @Accept json
// @Produce json
// @Param body body dto.SwitchTenantRequest true "目标租户"
// @Success 200 {object} dto.Response[dto.SwitchTenantResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /v1/session/tenant [put]
func (h *SessionHandler) SwitchTenant(c *gin.Context) {
	var req dto.SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	h.switchTo(c, *req.TenantID)
}

// ClearTenant 清除会话租户
// @Summary 清除会话租户
// @Description 将会话租户写为空字符串
// @Tags Session
// @Produce json
// @Success 200 {object} dto.Response[dto.SwitchTenantResponse]
// @Router /v1/session/tenant [delete]
func (h *SessionHandler) ClearTenant(c *gin.Context) {
	h.switchTo(c, "")
}

func (h *SessionHandler) switchTo(c *gin.Context, tenantID string) {
	ctx := c.Request.Context()
	b, ok := middleware.GetBinding(c)
	if !ok {
		logger.Error(ctx, "tenant binding missing", nil)
		dto.InternalError(c, "tenant binding not available")
		return
	}

	result, err := h.switcher.Switch(ctx, b, tenantapp.SwitchRequest{
		TenantID:  tenantID,
		RequestID: c.GetString(middleware.RequestIDKey),
		TraceID:   tracer.TraceID(ctx),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, &dto.SwitchTenantResponse{
		TenantID:  result.TenantID,
		Changed:   result.Changed,
		Persisted: result.PersistErr == nil,
	})
}

package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"orchestrai-web/internal/interfaces/http/middleware"
	"orchestrai-web/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// LayoutTemplate 返回根布局模板
func LayoutTemplate() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// LayoutState 根布局下发给客户端的初始状态
type LayoutState struct {
	TenantID string `json:"tenantId"`
}

// LayoutHandler 根布局处理器
type LayoutHandler struct {
	title string
}

// NewLayoutHandler 创建根布局处理器
func NewLayoutHandler(title string) *LayoutHandler {
	if title == "" {
		title = "OrchestrAI"
	}
	return &LayoutHandler{title: title}
}

// Render 渲染根布局
// 初始租户取自本次请求 Cookie 解析出的 Binding，作为客户端租户上下文的构造值。
func (h *LayoutHandler) Render(c *gin.Context) {
	state := LayoutState{}
	if b, ok := middleware.GetBinding(c); ok {
		state.TenantID = b.Read()
	} else {
		logger.Warn(c.Request.Context(), "layout rendered without tenant binding")
	}

	c.HTML(http.StatusOK, "layout.html", gin.H{
		"Title": h.title,
		"State": state,
	})
}

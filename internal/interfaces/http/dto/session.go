// Package dto 提供 HTTP 层数据传输对象
package dto

// SessionResponse 会话租户，即本次请求由 Cookie 解析出的值
type SessionResponse struct {
	TenantID string `json:"tenant_id"`
}

// SwitchTenantRequest 切换租户请求
// tenant_id 可为空字符串，表示清除当前租户。
type SwitchTenantRequest struct {
	TenantID *string `json:"tenant_id" binding:"required"`
}

// SwitchTenantResponse 切换租户响应
type SwitchTenantResponse struct {
	TenantID string `json:"tenant_id"`
	Changed  bool   `json:"changed"`
	// Persisted 为 false 表示 Cookie 未能写回
	Persisted bool `json:"persisted"`
}

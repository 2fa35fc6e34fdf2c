// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"orchestrai-web/internal/domain/entity"
)

// TenantResponse 租户响应
type TenantResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	LicenseType entity.LicenseType  `json:"license_type"`
	Domains     []string            `json:"domains"`
	Status      entity.TenantStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ToTenantResponse 实体转换为响应
func ToTenantResponse(t *entity.Tenant) *TenantResponse {
	if t == nil {
		return nil
	}
	domains := []string(t.Domains)
	if domains == nil {
		domains = []string{}
	}
	return &TenantResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		LicenseType: t.LicenseType,
		Domains:     domains,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTenantResponses 批量转换
func ToTenantResponses(items []*entity.Tenant) []*TenantResponse {
	out := make([]*TenantResponse, 0, len(items))
	for _, t := range items {
		out = append(out, ToTenantResponse(t))
	}
	return out
}

// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"orchestrai-web/internal/domain/entity"
)

// TenantFilter 租户列表过滤条件
type TenantFilter struct {
	// Status 为空时不过滤
	Status entity.TenantStatus
}

// TenantRepository 租户仓储接口
// 查询不到记录时返回 (nil, nil)
type TenantRepository interface {
	// Create 创建租户
	Create(ctx context.Context, tenant *entity.Tenant) error

	// GetByID 根据 ID 获取租户
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)

	// GetBySlug 根据 Slug 获取租户
	GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error)

	// List 获取租户列表，按创建时间倒序
	List(ctx context.Context, filter TenantFilter, pagination Pagination) (*PagedResult[*entity.Tenant], error)

	// UpdateStatus 更新租户状态
	UpdateStatus(ctx context.Context, id string, status entity.TenantStatus) error

	// ExistsBySlug 检查 Slug 是否存在
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// Package memory 提供进程内 Repository 实现，用于开发环境和测试
// 数据不持久化，进程重启即丢失。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"orchestrai-web/internal/domain/entity"
	"orchestrai-web/internal/domain/repository"
)

// TenantRepository 内存租户仓储
type TenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]*entity.Tenant
}

var _ repository.TenantRepository = (*TenantRepository)(nil)

// NewTenantRepository 创建内存租户仓储
func NewTenantRepository(seed ...*entity.Tenant) *TenantRepository {
	r := &TenantRepository{tenants: make(map[string]*entity.Tenant)}
	for _, t := range seed {
		r.tenants[t.ID] = clone(t)
	}
	return r
}

// Create 创建租户，ID 或 Slug 重复时返回错误
func (r *TenantRepository) Create(_ context.Context, tenant *entity.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants[tenant.ID]; ok {
		return fmt.Errorf("failed to create tenant: duplicate id %s", tenant.ID)
	}
	for _, t := range r.tenants {
		if t.Slug == tenant.Slug {
			return fmt.Errorf("failed to create tenant: duplicate slug %s", tenant.Slug)
		}
	}
	r.tenants[tenant.ID] = clone(tenant)
	return nil
}

// GetByID 根据 ID 获取租户
func (r *TenantRepository) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.tenants[id]; ok {
		return clone(t), nil
	}
	return nil, nil
}

// GetBySlug 根据 Slug 获取租户
func (r *TenantRepository) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tenants {
		if t.Slug == slug {
			return clone(t), nil
		}
	}
	return nil, nil
}

// List 获取租户列表，按创建时间倒序，时间相同按 Slug 排序
func (r *TenantRepository) List(_ context.Context, filter repository.TenantFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Tenant], error) {
	r.mu.RLock()
	matched := make([]*entity.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		matched = append(matched, clone(t))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Slug < matched[j].Slug
	})

	total := int64(len(matched))
	start := min(pagination.Offset(), len(matched))
	end := min(start+pagination.Limit(), len(matched))

	return repository.NewPagedResult(matched[start:end], total, pagination), nil
}

// UpdateStatus 更新租户状态，不存在的租户忽略
func (r *TenantRepository) UpdateStatus(_ context.Context, id string, status entity.TenantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tenants[id]; ok {
		t.Status = status
		t.UpdatedAt = time.Now()
	}
	return nil
}

// ExistsBySlug 检查 Slug 是否存在
func (r *TenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	t, err := r.GetBySlug(ctx, slug)
	return t != nil, err
}

func clone(t *entity.Tenant) *entity.Tenant {
	cp := *t
	if t.Domains != nil {
		cp.Domains = append([]string(nil), t.Domains...)
	}
	return &cp
}

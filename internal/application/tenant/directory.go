// Package tenant 提供租户目录查询与会话租户切换
package tenant

import (
	"context"
	"encoding/json"
	"time"

	"orchestrai-web/internal/domain/entity"
	"orchestrai-web/internal/domain/repository"
	"orchestrai-web/pkg/errors"
	"orchestrai-web/pkg/logger"
	"orchestrai-web/pkg/metrics"
)

// Cache 读穿缓存
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

// CacheKeyFunc 构建租户缓存键
type CacheKeyFunc func(tenantID string) string

// Directory 租户目录
type Directory struct {
	repo     repository.TenantRepository
	cache    Cache
	cacheKey CacheKeyFunc
	ttl      time.Duration
}

// NewDirectory 创建租户目录，cache 为 nil 时直接读仓储
func NewDirectory(repo repository.TenantRepository, cache Cache, cacheKey CacheKeyFunc, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cacheKey == nil {
		cacheKey = func(id string) string { return "tenant:" + id }
	}
	return &Directory{
		repo:     repo,
		cache:    cache,
		cacheKey: cacheKey,
		ttl:      ttl,
	}
}

// List 分页列出活跃租户
func (d *Directory) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Tenant], error) {
	result, err := d.repo.List(ctx, repository.TenantFilter{Status: entity.TenantStatusActive}, pagination)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to list tenants")
	}
	return result, nil
}

// Get 获取租户，不存在时返回 ErrTenantNotFound
func (d *Directory) Get(ctx context.Context, id string) (*entity.Tenant, error) {
	if id == "" {
		return nil, errors.ErrTenantRequired
	}

	if d.cache != nil {
		tenant, err := d.getCached(ctx, id)
		if err == nil || errors.IsAppError(err) {
			return tenant, err
		}
		// 缓存不可用时回源
		logger.Warn(ctx, "tenant cache unavailable, falling back to repository", "error", err.Error())
		metrics.TenantDirectoryLookupsTotal.WithLabelValues("error").Inc()
	}

	tenant, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to get tenant")
	}
	if tenant == nil {
		return nil, errors.ErrTenantNotFound
	}
	metrics.TenantDirectoryLookupsTotal.WithLabelValues("miss").Inc()
	return tenant, nil
}

func (d *Directory) getCached(ctx context.Context, id string) (*entity.Tenant, error) {
	loaded := false
	raw, err := d.cache.GetOrLoadSafe(ctx, d.cacheKey(id), d.ttl, func() (any, error) {
		loaded = true
		tenant, err := d.repo.GetByID(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to get tenant")
		}
		if tenant == nil {
			return nil, errors.ErrTenantNotFound
		}
		return tenant, nil
	})
	if err != nil {
		return nil, err
	}

	var tenant entity.Tenant
	if err := json.Unmarshal(raw, &tenant); err != nil {
		return nil, err
	}

	if loaded {
		metrics.TenantDirectoryLookupsTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.TenantDirectoryLookupsTotal.WithLabelValues("hit").Inc()
	}
	return &tenant, nil
}

// Verify 获取租户并要求其处于活跃状态
func (d *Directory) Verify(ctx context.Context, id string) (*entity.Tenant, error) {
	tenant, err := d.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, errors.ErrTenantInactive
	}
	return tenant, nil
}

// Invalidate 删除租户缓存
func (d *Directory) Invalidate(ctx context.Context, id string) error {
	if d.cache == nil {
		return nil
	}
	return d.cache.Delete(ctx, d.cacheKey(id))
}

// UpdateStatus 更新租户状态并清理缓存
func (d *Directory) UpdateStatus(ctx context.Context, id string, status entity.TenantStatus) error {
	if err := d.repo.UpdateStatus(ctx, id, status); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to update tenant status")
	}
	if err := d.Invalidate(ctx, id); err != nil {
		logger.Warn(ctx, "failed to invalidate tenant cache", "tenant_id", id, "error", err.Error())
	}
	return nil
}

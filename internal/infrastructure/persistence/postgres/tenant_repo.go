// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"orchestrai-web/internal/domain/entity"
	"orchestrai-web/internal/domain/repository"
)

// TenantRepository 租户仓储实现
type TenantRepository struct {
	client *Client
}

var _ repository.TenantRepository = (*TenantRepository)(nil)

// NewTenantRepository 创建租户仓储
func NewTenantRepository(client *Client) *TenantRepository {
	return &TenantRepository{client: client}
}

// migrationModels 返回需要迁移的模型
func migrationModels() []any {
	return []any{&entity.Tenant{}}
}

// Create 创建租户
func (r *TenantRepository) Create(ctx context.Context, tenant *entity.Tenant) error {
	ctx, span := tracer.Start(ctx, "postgres.TenantRepository.Create",
		trace.WithAttributes(attribute.String("tenant.slug", tenant.Slug)))
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(tenant).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取租户
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	ctx, span := tracer.Start(ctx, "postgres.TenantRepository.GetByID",
		trace.WithAttributes(attribute.String("tenant.id", id)))
	defer span.End()

	var tenant entity.Tenant
	if err := getDB(ctx, r.client.db).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// GetBySlug 根据 Slug 获取租户
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	ctx, span := tracer.Start(ctx, "postgres.TenantRepository.GetBySlug",
		trace.WithAttributes(attribute.String("tenant.slug", slug)))
	defer span.End()

	var tenant entity.Tenant
	if err := getDB(ctx, r.client.db).First(&tenant, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get tenant by slug: %w", err)
	}
	return &tenant, nil
}

// List 获取租户列表
func (r *TenantRepository) List(ctx context.Context, filter repository.TenantFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Tenant], error) {
	ctx, span := tracer.Start(ctx, "postgres.TenantRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	byFilter := func(tx *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			return tx.Where("status = ?", filter.Status)
		}
		return tx
	}

	var total int64
	if err := db.Model(&entity.Tenant{}).Scopes(byFilter).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count tenants: %w", err)
	}

	var tenants []*entity.Tenant
	if err := db.Scopes(byFilter).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&tenants).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return repository.NewPagedResult(tenants, total, pagination), nil
}

// UpdateStatus 更新租户状态
func (r *TenantRepository) UpdateStatus(ctx context.Context, id string, status entity.TenantStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.TenantRepository.UpdateStatus",
		trace.WithAttributes(attribute.String("tenant.id", id)))
	defer span.End()

	err := getDB(ctx, r.client.db).Model(&entity.Tenant{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update tenant status: %w", err)
	}
	return nil
}

// ExistsBySlug 检查 Slug 是否存在
func (r *TenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.TenantRepository.ExistsBySlug")
	defer span.End()

	var count int64
	if err := getDB(ctx, r.client.db).Model(&entity.Tenant{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check slug exists: %w", err)
	}
	return count > 0, nil
}

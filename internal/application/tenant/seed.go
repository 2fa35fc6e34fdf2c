package tenant

import (
	"context"

	"orchestrai-web/internal/domain/entity"
	"orchestrai-web/internal/domain/repository"
)

// SeedTenant 预置租户
type SeedTenant struct {
	// ID 为空时生成 UUID
	ID      string
	Name    string
	Slug    string
	License entity.LicenseType
	Domains []string
}

// DemoTenants 演示租户，bootstrap 写入 PostgreSQL，内存后端启动时直接加载
// ID 与 Slug 相同，便于直接写入 Cookie。
var DemoTenants = []SeedTenant{
	{ID: "acme", Name: "Acme Corp", Slug: "acme", License: entity.LicenseEnterprise, Domains: []string{"acme.example.com"}},
	{ID: "globex", Name: "Globex Inc", Slug: "globex", License: entity.LicensePro, Domains: []string{"globex.example.com"}},
}

// EnsureTenant 按 Slug 查找租户，不存在时创建；返回租户与是否新建
func EnsureTenant(ctx context.Context, repo repository.TenantRepository, s SeedTenant) (*entity.Tenant, bool, error) {
	existing, err := repo.GetBySlug(ctx, s.Slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	tenant := entity.NewTenant(s.Name, s.Slug, s.License)
	if s.ID != "" {
		tenant.ID = s.ID
	}
	tenant.Domains = s.Domains
	if err := repo.Create(ctx, tenant); err != nil {
		return nil, false, err
	}
	return tenant, true, nil
}

// SeedTenants 写入全部预置租户
func SeedTenants(ctx context.Context, repo repository.TenantRepository, seeds []SeedTenant) error {
	for _, s := range seeds {
		if _, _, err := EnsureTenant(ctx, repo, s); err != nil {
			return err
		}
	}
	return nil
}

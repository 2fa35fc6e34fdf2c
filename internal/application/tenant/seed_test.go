package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrai-web/internal/domain/entity"
	"orchestrai-web/internal/infrastructure/persistence/memory"
)

func TestEnsureTenantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTenantRepository()

	tenant, created, err := EnsureTenant(ctx, repo, DemoTenants[0])
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "acme", tenant.ID)

	again, created, err := EnsureTenant(ctx, repo, DemoTenants[0])
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tenant.ID, again.ID)
	assert.Equal(t, []string{"acme.example.com"}, []string(again.Domains))
}

func TestEnsureTenantGeneratesID(t *testing.T) {
	tenant, created, err := EnsureTenant(context.Background(), memory.NewTenantRepository(),
		SeedTenant{Name: "Initech", Slug: "initech"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "initech", tenant.ID)
	assert.Len(t, tenant.ID, 36)
	assert.Equal(t, entity.LicenseTrial, tenant.LicenseType)
}

func TestSeedTenantsMakesDemoTenantsVerifiable(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTenantRepository()
	require.NoError(t, SeedTenants(ctx, repo, DemoTenants))
	require.NoError(t, SeedTenants(ctx, repo, DemoTenants))

	dir := NewDirectory(repo, nil, nil, 0)
	for _, s := range DemoTenants {
		tenant, err := dir.Verify(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.Slug, tenant.Slug)
	}
}

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTenant(t *testing.T) {
	tenant := NewTenant("Acme Corp", "acme", "")

	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, LicenseTrial, tenant.LicenseType)
	assert.True(t, tenant.IsActive())
	assert.Equal(t, tenant.CreatedAt, tenant.UpdatedAt)

	tenant.Status = TenantStatusSuspended
	assert.False(t, tenant.IsActive())
}

func TestParseLicenseType(t *testing.T) {
	tests := []struct {
		in   string
		want LicenseType
		ok   bool
	}{
		{"", LicenseTrial, true},
		{"pro", LicensePro, true},
		{" ENTERPRISE ", LicenseEnterprise, true},
		{"free", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLicenseType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTenantStatus(t *testing.T) {
	st, ok := ParseTenantStatus(" Suspended ")
	assert.True(t, ok)
	assert.Equal(t, TenantStatusSuspended, st)

	st, ok = ParseTenantStatus("active")
	assert.True(t, ok)
	assert.Equal(t, TenantStatusActive, st)

	_, ok = ParseTenantStatus("")
	assert.False(t, ok)
	_, ok = ParseTenantStatus("paused")
	assert.False(t, ok)
}

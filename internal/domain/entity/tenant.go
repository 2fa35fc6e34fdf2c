// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TenantStatus 租户状态
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusDeleted   TenantStatus = "deleted"
)

// ParseTenantStatus 解析租户状态
func ParseTenantStatus(v string) (TenantStatus, bool) {
	switch st := TenantStatus(strings.ToLower(strings.TrimSpace(v))); st {
	case TenantStatusActive, TenantStatusSuspended, TenantStatusDeleted:
		return st, true
	default:
		return "", false
	}
}

// LicenseType 租户授权类型
type LicenseType string

const (
	LicenseTrial      LicenseType = "TRIAL"
	LicensePro        LicenseType = "PRO"
	LicenseEnterprise LicenseType = "ENTERPRISE"
)

// ParseLicenseType 解析授权类型，空值返回 TRIAL
func ParseLicenseType(v string) (LicenseType, bool) {
	switch lt := LicenseType(strings.ToUpper(strings.TrimSpace(v))); lt {
	case "":
		return LicenseTrial, true
	case LicenseTrial, LicensePro, LicenseEnterprise:
		return lt, true
	default:
		return "", false
	}
}

// Tenant 租户实体
type Tenant struct {
	ID          string         `json:"id" gorm:"primaryKey;type:text"`
	Name        string         `json:"name" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	LicenseType LicenseType    `json:"license_type" gorm:"type:text;not null;default:TRIAL"`
	Domains     pq.StringArray `json:"domains,omitempty" gorm:"type:text[]"`
	Status      TenantStatus   `json:"status" gorm:"type:text;not null;default:active;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName GORM 表名
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant 创建新租户
func NewTenant(name, slug string, license LicenseType) *Tenant {
	now := time.Now()
	if license == "" {
		license = LicenseTrial
	}
	return &Tenant{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug,
		LicenseType: license,
		Status:      TenantStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsActive 检查租户是否活跃
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

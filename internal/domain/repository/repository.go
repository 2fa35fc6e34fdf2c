// Package repository 定义数据访问层接口
package repository

import "context"

// Pagination 分页参数
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination 创建分页参数，页码从 1 开始，每页最多 100 条
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset 计算偏移量
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 获取限制数量
func (p Pagination) Limit() int {
	return p.PageSize
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPagedResult 创建分页结果
func NewPagedResult[T any](items []T, total int64, pagination Pagination) *PagedResult[T] {
	totalPages := 0
	if pagination.PageSize > 0 {
		totalPages = int(total) / pagination.PageSize
		if int(total)%pagination.PageSize > 0 {
			totalPages++
		}
	}
	return &PagedResult[T]{
		Items:      items,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: totalPages,
	}
}

// TxKey 事务在 context 中的键
type TxKey struct{}

// Transactor 事务执行接口
type Transactor interface {
	// WithTransaction 在同一事务中执行 fn，fn 返回错误时回滚
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

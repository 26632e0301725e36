package repository

import (
	"math"

	"gorm.io/gorm"
)

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	return query.Limit(pageSize).Offset(paginationOffset(page, pageSize))
}

// paginationOffset 计算偏移量；页码过大导致溢出时落到结果集末尾之后
func paginationOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

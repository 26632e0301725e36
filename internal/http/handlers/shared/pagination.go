package shared

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 规范化分页参数：page >= 1，page_size 取 1..100
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// PaginationFromQuery 从查询参数读取分页
func PaginationFromQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return NormalizePagination(page, pageSize)
}

package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetBatchExpiryReport GET /api/v1/admin/inventory/batches/expiry
//
// 查询参数：page, page_size, category, supplier_id, within_days, only_dated,
// reference_date（业务时区的 YYYY-MM-DD，默认今天）
func (h *Handler) GetBatchExpiryReport(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	filter := repository.InventoryBatchListFilter{
		Page:      page,
		PageSize:  pageSize,
		Category:  strings.TrimSpace(c.Query("category")),
		OnlyDated: c.Query("only_dated") == "true" || c.Query("only_dated") == "1",
	}
	if raw := strings.TrimSpace(c.Query("supplier_id")); raw != "" {
		supplierID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
			return
		}
		filter.SupplierID = uint(supplierID)
	}

	var reference time.Time
	if raw := strings.TrimSpace(c.Query("reference_date")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.InventoryBatchService.Location())
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.invalid_date", nil)
			return
		}
		reference = parsed
	}
	if raw := strings.TrimSpace(c.Query("within_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		horizon := h.InventoryBatchService.ExpiryHorizon(reference, days)
		filter.ExpiringBefore = &horizon
	}

	report, err := h.InventoryBatchService.ExpiryReport(c.Request.Context(), filter, reference)
	if err != nil {
		respondWithMappedError(c, err, nil, response.CodeInternal, "error.inventory_report_failed")
		return
	}
	response.SuccessWithPage(c, gin.H{
		"reference_date": report.ReferenceDate.Format(dateLayout),
		"summary":        report.Summary,
		"items":          report.Items,
	}, response.NewPagination(report.Page, report.PageSize, report.Total))
}

package admin

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/farm-ledger/internal/constants"
	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/i18n"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// DeliveryStatusRequest 交付状态更新请求（JSON 或表单）
type DeliveryStatusRequest struct {
	Status         string `json:"status" form:"status"`
	DeliveryDate   string `json:"delivery_date" form:"delivery_date"`
	TrackingNumber string `json:"tracking_number" form:"tracking_number"`
	Carrier        string `json:"carrier" form:"carrier"`
	Notes          string `json:"notes" form:"notes"`
	Format         string `json:"-" form:"format"`
}

// UpdateDeliveryStatus PATCH /api/v1/admin/purchases/:id/delivery-status
func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	auth, ok := getAuthContext(c)
	if !ok {
		return
	}
	purchaseID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req DeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, ok := buildTransitionInput(c, purchaseID, req)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_date", nil)
		return
	}
	result := h.DeliveryService.UpdateDeliveryStatus(c.Request.Context(), auth, input)
	renderDeliveryStatusJSON(c, result)
}

// SubmitDeliveryStatusForm POST /admin/purchases/:id/delivery-status
//
// 默认 303 重定向回采购单页面并携带提示信息，format=json 时返回 JSON
func (h *Handler) SubmitDeliveryStatusForm(c *gin.Context) {
	var req DeliveryStatusRequest
	bindErr := c.ShouldBind(&req)
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = strings.ToLower(strings.TrimSpace(c.Query("format")))
	}

	auth, authOK := handlershared.GetAuthContext(c)
	purchaseID, idOK := handlershared.ParseUintParam(c, "id")
	input, dateOK := buildTransitionInput(c, purchaseID, req)

	var result service.DeliveryStatusResult
	switch {
	case !authOK:
		result = failedDeliveryResult(purchaseID, "error.unauthorized", service.ErrPermissionDenied)
	case !idOK:
		result = failedDeliveryResult(0, "error.invalid_id", nil)
	case bindErr != nil:
		requestLog(c).Infow("delivery_status_form_bind_failed", "error", bindErr)
		result = failedDeliveryResult(purchaseID, "error.bad_request", nil)
	case !dateOK:
		result = failedDeliveryResult(purchaseID, "error.invalid_date", nil)
	default:
		result = h.DeliveryService.UpdateDeliveryStatus(c.Request.Context(), auth, input)
	}

	if format == constants.ResponseFormatJSON {
		renderDeliveryStatusJSON(c, result)
		return
	}
	renderDeliveryStatusRedirect(c, result)
}

func failedDeliveryResult(purchaseID uint, key string, err error) service.DeliveryStatusResult {
	target := "/admin/purchases"
	if purchaseID != 0 {
		target = "/admin/purchases/" + strconv.FormatUint(uint64(purchaseID), 10)
	}
	return service.DeliveryStatusResult{MessageKey: key, RedirectTarget: target, Err: err}
}

func buildTransitionInput(c *gin.Context, purchaseID uint, req DeliveryStatusRequest) (service.TransitionInput, bool) {
	input := service.TransitionInput{
		PurchaseID:   purchaseID,
		TargetStatus: req.Status,
		Fields: service.DeliveryFields{
			TrackingNumber: req.TrackingNumber,
			Carrier:        req.Carrier,
			Notes:          req.Notes,
		},
		RequestID: handlershared.GetRequestID(c),
	}
	raw := strings.TrimSpace(req.DeliveryDate)
	if raw == "" {
		return input, true
	}
	date, err := parseDate(raw)
	if err != nil {
		return input, false
	}
	input.Fields.DeliveryDate = &date
	return input, true
}

// parseDate 解析 YYYY-MM-DD 或 RFC 3339 日期
func parseDate(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func deliveryResultCode(err error) int {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return response.CodeForbidden
	case errors.Is(err, service.ErrPurchaseNotFound):
		return response.CodeNotFound
	case errors.Is(err, service.ErrStorage):
		return response.CodeInternal
	default:
		return response.CodeBadRequest
	}
}

func renderDeliveryStatusJSON(c *gin.Context, result service.DeliveryStatusResult) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.Sprintf(locale, result.MessageKey, result.MessageArgs...)
	if result.Success {
		response.SuccessWithMsg(c, msg, result.Outcome)
		return
	}
	var logged error
	if errors.Is(result.Err, service.ErrStorage) {
		logged = result.Err
	}
	respondError(c, deliveryResultCode(result.Err), result.MessageKey, logged, result.MessageArgs...)
}

func renderDeliveryStatusRedirect(c *gin.Context, result service.DeliveryStatusResult) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.Sprintf(locale, result.MessageKey, result.MessageArgs...)
	flashType := "success"
	if !result.Success {
		flashType = "error"
		if errors.Is(result.Err, service.ErrStorage) {
			requestLog(c).Errorw("delivery_status_form_failed", "error", result.Err)
		}
	}
	query := url.Values{}
	query.Set("flash", msg)
	query.Set("flash_type", flashType)
	c.Redirect(http.StatusSeeOther, result.RedirectTarget+"?"+query.Encode())
}

// GetSupplierDeliveryHistory GET /api/v1/admin/suppliers/:id/delivery-history
func (h *Handler) GetSupplierDeliveryHistory(c *gin.Context) {
	supplierID, ok := parseIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	limit = h.DeliveryHistoryService.NormalizeLimit(limit)

	summaries, err := h.DeliveryHistoryService.HistoryForSupplier(c.Request.Context(), supplierID, limit)
	if err != nil {
		respondWithMappedError(c, err, readErrorRules, response.CodeInternal, "error.history_load_failed")
		return
	}
	response.Success(c, gin.H{
		"supplier_id": supplierID,
		"limit":       limit,
		"items":       summaries,
	})
}

// GetPurchaseTracking GET /api/v1/admin/purchases/:id/tracking
func (h *Handler) GetPurchaseTracking(c *gin.Context) {
	purchaseID, ok := parseIDParam(c)
	if !ok {
		return
	}
	events, err := h.DeliveryHistoryService.HistoryForPurchase(c.Request.Context(), purchaseID)
	if err != nil {
		respondWithMappedError(c, err, readErrorRules, response.CodeInternal, "error.history_load_failed")
		return
	}
	response.Success(c, gin.H{
		"purchase_id": purchaseID,
		"items":       events,
	})
}

// GetPurchase GET /api/v1/admin/purchases/:id
func (h *Handler) GetPurchase(c *gin.Context) {
	purchaseID, ok := parseIDParam(c)
	if !ok {
		return
	}
	detail, err := h.DeliveryHistoryService.PurchaseDetail(c.Request.Context(), purchaseID)
	if err != nil {
		respondWithMappedError(c, err, readErrorRules, response.CodeInternal, "error.history_load_failed")
		return
	}
	response.Success(c, detail)
}

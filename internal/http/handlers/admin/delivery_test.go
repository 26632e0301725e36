package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/farm-ledger/internal/constants"
	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/http/response"
	"github.com/farm-ledger/internal/models"
	"github.com/farm-ledger/internal/provider"
	"github.com/farm-ledger/internal/repository"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var handlerAdmin = service.AuthContext{ActorID: 1, Username: "ops", Role: constants.RoleAdmin}

func setupDeliveryHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_delivery_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	purchaseRepo := repository.NewPurchaseRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	trackingRepo := repository.NewDeliveryTrackingRepository(db)
	historyRepo := repository.NewDeliveryHistoryRepository(db)
	batchRepo := repository.NewInventoryBatchRepository(db)
	audit := service.NewAuditTrailWriter(trackingRepo)
	historyService := service.NewDeliveryHistoryService(historyRepo, supplierRepo, purchaseRepo, trackingRepo, nil, service.DeliveryHistoryOptions{
		DefaultLimit:       10,
		MaxLimit:           100,
		ExpiringSoonWindow: 7,
	})

	h := &Handler{Container: &provider.Container{
		PurchaseRepo:           purchaseRepo,
		SupplierRepo:           supplierRepo,
		DeliveryTrackingRepo:   trackingRepo,
		AuditTrailWriter:       audit,
		DeliveryService:        service.NewDeliveryService(purchaseRepo, audit, nil, nil, 5*time.Second),
		DeliveryHistoryService: historyService,
		InventoryBatchService:  service.NewInventoryBatchService(batchRepo, 7, nil),
	}}
	return h, db
}

func seedPurchase(t *testing.T, db *gorm.DB) (*models.Supplier, *models.PurchaseOrder) {
	t.Helper()
	supplier := &models.Supplier{Name: "Valley Feed Co", IsActive: true}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier failed: %v", err)
	}
	purchaseDate := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	purchase := &models.PurchaseOrder{
		SupplierID:   supplier.ID,
		PurchaseDate: purchaseDate,
		Status:       constants.DeliveryStatusPending,
		UpdatedAt:    purchaseDate,
	}
	if err := db.Create(purchase).Error; err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	line := models.PurchaseItem{
		PurchaseID: purchase.ID,
		ItemName:   "layer mash",
		Unit:       "kg",
		Quantity:   models.NewQuantity(decimal.RequireFromString("40")),
		UnitPrice:  models.NewMoneyFromDecimal(decimal.RequireFromString("0.85")),
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("create purchase item failed: %v", err)
	}
	return supplier, purchase
}

// newRouter 挂载处理器，用桩中间件代替认证中间件
func newRouter(h *Handler, auth *service.AuthContext) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-test")
		if auth != nil {
			c.Set(handlershared.AuthContextKey, *auth)
		}
		c.Next()
	})
	r.PATCH("/api/v1/admin/purchases/:id/delivery-status", h.UpdateDeliveryStatus)
	r.POST("/admin/purchases/:id/delivery-status", h.SubmitDeliveryStatusForm)
	r.GET("/api/v1/admin/purchases/:id", h.GetPurchase)
	r.GET("/api/v1/admin/purchases/:id/tracking", h.GetPurchaseTracking)
	r.GET("/api/v1/admin/suppliers/:id/delivery-history", h.GetSupplierDeliveryHistory)
	r.GET("/api/v1/admin/inventory/batches/expiry", h.GetBatchExpiryReport)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string, map[string]interface{}) {
	t.Helper()
	var body struct {
		StatusCode int                    `json:"status_code"`
		Msg        string                 `json:"msg"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, rec.Body.String())
	}
	return body.StatusCode, body.Msg, body.Data
}

func patchStatus(r *gin.Engine, purchaseID uint, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/v1/admin/purchases/%d/delivery-status", purchaseID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateDeliveryStatusJSON(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	_, purchase := seedPurchase(t, db)
	r := newRouter(h, &handlerAdmin)

	rec := patchStatus(r, purchase.ID, `{"status":"delivered","delivery_date":"2026-05-28","carrier":"FarmFreight"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected http status: %d", rec.Code)
	}
	code, msg, data := decodeEnvelope(t, rec)
	if code != response.CodeOK {
		t.Fatalf("expected ok, got %d (%s)", code, msg)
	}
	if msg != "Delivery status updated to delivered" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if data["status"] != constants.DeliveryStatusDelivered || data["previous_status"] != constants.DeliveryStatusPending {
		t.Fatalf("unexpected outcome: %+v", data)
	}

	var stored models.PurchaseOrder
	if err := db.First(&stored, purchase.ID).Error; err != nil {
		t.Fatalf("reload purchase failed: %v", err)
	}
	if stored.DeliveryDate == nil || stored.DeliveryDate.Format(dateLayout) != "2026-05-28" {
		t.Fatalf("delivery date not stored: %v", stored.DeliveryDate)
	}
}

func TestUpdateDeliveryStatusJSONErrors(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	_, purchase := seedPurchase(t, db)
	viewer := service.AuthContext{ActorID: 2, Username: "clerk", Role: constants.RoleViewer}

	cases := []struct {
		name string
		auth *service.AuthContext
		id   uint
		body string
		code int
	}{
		{name: "no identity", auth: nil, id: purchase.ID, body: `{"status":"shipped"}`, code: response.CodeUnauthorized},
		{name: "viewer", auth: &viewer, id: purchase.ID, body: `{"status":"shipped"}`, code: response.CodeForbidden},
		{name: "unknown purchase", auth: &handlerAdmin, id: purchase.ID + 100, body: `{"status":"shipped"}`, code: response.CodeNotFound},
		{name: "bad status", auth: &handlerAdmin, id: purchase.ID, body: `{"status":"lost"}`, code: response.CodeBadRequest},
		{name: "delivered without date", auth: &handlerAdmin, id: purchase.ID, body: `{"status":"delivered"}`, code: response.CodeBadRequest},
		{name: "bad date", auth: &handlerAdmin, id: purchase.ID, body: `{"status":"delivered","delivery_date":"28/05/2026"}`, code: response.CodeBadRequest},
		{name: "bad json", auth: &handlerAdmin, id: purchase.ID, body: `{"status":`, code: response.CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := patchStatus(newRouter(h, tc.auth), tc.id, tc.body)
			code, msg, data := decodeEnvelope(t, rec)
			if code != tc.code {
				t.Fatalf("expected code %d, got %d (%s)", tc.code, code, msg)
			}
			if data["request_id"] != "req-test" {
				t.Fatalf("request id should be attached on error: %+v", data)
			}
		})
	}

	var events int64
	if err := db.Model(&models.DeliveryTrackingEvent{}).Count(&events).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if events != 0 {
		t.Fatalf("rejected updates must not write events, got %d", events)
	}
}

func TestSubmitDeliveryStatusFormRedirects(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	_, purchase := seedPurchase(t, db)
	r := newRouter(h, &handlerAdmin)

	form := url.Values{"status": {"shipped"}, "tracking_number": {"TRK-77"}}
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/purchases/%d/delivery-status", purchase.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location failed: %v", err)
	}
	if location.Path != fmt.Sprintf("/admin/purchases/%d", purchase.ID) {
		t.Fatalf("unexpected redirect path: %s", location.Path)
	}
	if location.Query().Get("flash_type") != "success" || location.Query().Get("flash") != "Delivery status updated to shipped" {
		t.Fatalf("unexpected flash: %s", location.RawQuery)
	}

	// 提交失败同样重定向，并携带错误提示
	form = url.Values{"status": {"delivered"}}
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/purchases/%d/delivery-status?lang=zh-CN", purchase.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	location, _ = url.Parse(rec.Header().Get("Location"))
	if rec.Code != http.StatusSeeOther || location.Query().Get("flash_type") != "error" {
		t.Fatalf("expected error redirect, got %d %s", rec.Code, location)
	}
	if location.Query().Get("flash") != "标记为已交付时必须填写交付日期" {
		t.Fatalf("flash should be localized: %q", location.Query().Get("flash"))
	}
}

func TestSubmitDeliveryStatusFormJSON(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	_, purchase := seedPurchase(t, db)
	r := newRouter(h, &handlerAdmin)

	form := url.Values{"status": {"cancelled"}, "format": {"json"}}
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/purchases/%d/delivery-status", purchase.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, _, data := decodeEnvelope(t, rec)
	if code != response.CodeOK || data["status"] != constants.DeliveryStatusCancelled {
		t.Fatalf("unexpected json answer: %d %+v", code, data)
	}
}

func TestReadEndpoints(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	supplier, purchase := seedPurchase(t, db)
	r := newRouter(h, &handlerAdmin)

	if rec := patchStatus(r, purchase.ID, `{"status":"shipped","tracking_number":"TRK-1"}`); rec.Code != http.StatusOK {
		t.Fatalf("seed transition failed: %d", rec.Code)
	}

	get := func(path string) (int, map[string]interface{}) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		code, _, data := decodeEnvelope(t, rec)
		return code, data
	}

	code, data := get(fmt.Sprintf("/api/v1/admin/suppliers/%d/delivery-history?limit=500", supplier.ID))
	if code != response.CodeOK {
		t.Fatalf("history failed: %d", code)
	}
	if data["limit"] != float64(100) {
		t.Fatalf("limit should be capped, got %v", data["limit"])
	}
	items, _ := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected one summary, got %d", len(items))
	}
	summary := items[0].(map[string]interface{})
	if summary["total_cost"] != "34.00" || summary["status"] != constants.DeliveryStatusShipped {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	code, data = get(fmt.Sprintf("/api/v1/admin/purchases/%d/tracking", purchase.ID))
	events, _ := data["items"].([]interface{})
	if code != response.CodeOK || len(events) != 1 {
		t.Fatalf("unexpected tracking answer: %d %+v", code, data)
	}

	code, data = get(fmt.Sprintf("/api/v1/admin/purchases/%d", purchase.ID))
	if code != response.CodeOK || data["total_cost"] != "34.00" {
		t.Fatalf("unexpected detail answer: %d %+v", code, data)
	}

	if code, _ = get("/api/v1/admin/suppliers/999/delivery-history"); code != response.CodeNotFound {
		t.Fatalf("missing supplier should be 404, got %d", code)
	}
	if code, _ = get("/api/v1/admin/purchases/abc"); code != response.CodeBadRequest {
		t.Fatalf("bad id should be 400, got %d", code)
	}
}

func TestGetBatchExpiryReport(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	r := newRouter(h, &handlerAdmin)

	day := func(d int) *time.Time {
		v := time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	batches := []models.InventoryBatch{
		{BatchCode: "B-OLD", ItemName: "wormer", Category: "medicine", ExpiryDate: day(1)},
		{BatchCode: "B-SOON", ItemName: "vaccine", Category: "medicine", ExpiryDate: day(14)},
		{BatchCode: "B-LATER", ItemName: "grower pellets", Category: "feed", ExpiryDate: day(30)},
		{BatchCode: "B-NONE", ItemName: "grit", Category: "feed"},
	}
	for i := range batches {
		if err := db.Create(&batches[i]).Error; err != nil {
			t.Fatalf("create batch failed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/inventory/batches/expiry?reference_date=2026-07-10&page_size=10", nil))
	var body struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			ReferenceDate string         `json:"reference_date"`
			Summary       map[string]int `json:"summary"`
		} `json:"data"`
		Pagination response.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.StatusCode != response.CodeOK || body.Data.ReferenceDate != "2026-07-10" {
		t.Fatalf("unexpected report: %s", rec.Body.String())
	}
	if body.Pagination.Total != 4 {
		t.Fatalf("expected 4 batches, got %d", body.Pagination.Total)
	}
	if body.Data.Summary["expired"] != 1 || body.Data.Summary["expiring_soon"] != 1 || body.Data.Summary["valid"] != 1 || body.Data.Summary["not_applicable"] != 1 {
		t.Fatalf("unexpected summary: %+v", body.Data.Summary)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/inventory/batches/expiry?reference_date=bad", nil))
	if code, _, _ := decodeEnvelope(t, rec); code != response.CodeBadRequest {
		t.Fatalf("bad reference date should be 400, got %d", code)
	}
}

func TestSubmitDeliveryStatusFormRejectsUnreadableBody(t *testing.T) {
	h, db := setupDeliveryHandlerTest(t)
	_, purchase := seedPurchase(t, db)
	r := newRouter(h, &handlerAdmin)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/purchases/%d/delivery-status?format=json", purchase.ID), strings.NewReader(`{"status":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, msg, _ := decodeEnvelope(t, rec)
	if code != response.CodeBadRequest || msg != "Invalid request" {
		t.Fatalf("expected bad request, got %d %q", code, msg)
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/purchases/%d/delivery-status", purchase.ID), strings.NewReader(`{"status":`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location failed: %v", err)
	}
	if rec.Code != http.StatusSeeOther || location.Query().Get("flash_type") != "error" || location.Query().Get("flash") != "Invalid request" {
		t.Fatalf("expected bad request redirect, got %d %s", rec.Code, location)
	}

	var events int64
	if err := db.Model(&models.DeliveryTrackingEvent{}).Count(&events).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if events != 0 {
		t.Fatalf("unreadable submissions must not write events, got %d", events)
	}
}

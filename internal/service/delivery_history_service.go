package service

import (
	"context"
	"time"

	"github.com/farm-ledger/internal/constants"
	"github.com/farm-ledger/internal/expiry"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/models"
	"github.com/farm-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// DeliverySummary 供应商交付历史中的一条采购单
type DeliverySummary struct {
	PurchaseID           uint                  `json:"purchase_id"`
	Reference            string                `json:"reference"`
	PurchaseDate         time.Time             `json:"purchase_date"`
	ExpectedDeliveryDate *time.Time            `json:"expected_delivery_date"`
	DeliveryDate         *time.Time            `json:"delivery_date"`
	Status               string                `json:"status"`
	ItemCount            int64                 `json:"item_count"`
	TotalQuantity        models.Quantity       `json:"total_quantity"`
	TotalCost            models.Money          `json:"total_cost"`
	DeliveryWindow       expiry.Classification `json:"delivery_window"`
}

// PurchaseDetail 采购单详情（含明细与完整跟踪记录）
type PurchaseDetail struct {
	Purchase       *models.PurchaseOrder          `json:"purchase"`
	ItemCount      int64                          `json:"item_count"`
	TotalQuantity  models.Quantity                `json:"total_quantity"`
	TotalCost      models.Money                   `json:"total_cost"`
	DeliveryWindow expiry.Classification          `json:"delivery_window"`
	Events         []models.DeliveryTrackingEvent `json:"events"`
}

// DeliveryHistoryOptions 交付历史查询参数
type DeliveryHistoryOptions struct {
	DefaultLimit       int
	MaxLimit           int
	ExpiringSoonWindow int
	Location           *time.Location
}

// DeliveryHistoryService 交付历史查询服务（只读）
type DeliveryHistoryService struct {
	historyRepo  repository.DeliveryHistoryRepository
	supplierRepo repository.SupplierRepository
	purchaseRepo repository.PurchaseRepository
	trackingRepo repository.DeliveryTrackingRepository
	cache        DeliveryHistoryCache
	classifier   expiry.Classifier
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

func NewDeliveryHistoryService(
	historyRepo repository.DeliveryHistoryRepository,
	supplierRepo repository.SupplierRepository,
	purchaseRepo repository.PurchaseRepository,
	trackingRepo repository.DeliveryTrackingRepository,
	cache DeliveryHistoryCache,
	opts DeliveryHistoryOptions,
) *DeliveryHistoryService {
	defaultLimit := opts.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = constants.DefaultDeliveryHistoryLimit
	}
	maxLimit := opts.MaxLimit
	if maxLimit <= 0 {
		maxLimit = constants.MaxDeliveryHistoryLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &DeliveryHistoryService{
		historyRepo:  historyRepo,
		supplierRepo: supplierRepo,
		purchaseRepo: purchaseRepo,
		trackingRepo: trackingRepo,
		cache:        cache,
		classifier:   expiry.NewClassifier(opts.ExpiringSoonWindow).In(opts.Location),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
	}
}

// NormalizeLimit 规范化条数：非正数取默认值，超出上限时截断
func (s *DeliveryHistoryService) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// HistoryForSupplier 获取供应商最近的采购单（按采购日期倒序），无采购单时返回空切片
func (s *DeliveryHistoryService) HistoryForSupplier(ctx context.Context, supplierID uint, limit int) ([]DeliverySummary, error) {
	if supplierID == 0 {
		return nil, newValidationError("supplier_id", ErrMissingRequiredField)
	}
	exists, err := s.supplierRepo.Exists(ctx, supplierID)
	if err != nil {
		return nil, newStorageError("load supplier", err)
	}
	if !exists {
		return nil, ErrSupplierNotFound
	}
	limit = s.NormalizeLimit(limit)
	reference := s.now()

	var generation int64
	cacheable := false
	if s.cache != nil {
		var cached []DeliverySummary
		gen, hit, err := s.cache.Load(ctx, supplierID, limit, &cached)
		switch {
		case err != nil:
			logger.Warnw("delivery_history_cache_load_failed", "supplier_id", supplierID, "error", err)
		case hit:
			// 交付窗口依赖当天日期，不使用缓存值
			for i := range cached {
				cached[i].DeliveryWindow = s.deliveryWindow(cached[i].Status, cached[i].ExpectedDeliveryDate, reference)
			}
			return cached, nil
		default:
			generation, cacheable = gen, true
		}
	}

	rows, err := s.historyRepo.ListSupplierSummaries(ctx, supplierID, limit)
	if err != nil {
		return nil, newStorageError("list supplier history", err)
	}
	summaries := make([]DeliverySummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, s.summaryFromRow(row, reference))
	}

	if cacheable {
		if err := s.cache.Store(ctx, supplierID, limit, generation, summaries); err != nil {
			logger.Warnw("delivery_history_cache_store_failed", "supplier_id", supplierID, "error", err)
		}
	}
	return summaries, nil
}

// HistoryForPurchase 获取采购单跟踪记录（最新在前）
func (s *DeliveryHistoryService) HistoryForPurchase(ctx context.Context, purchaseID uint) ([]models.DeliveryTrackingEvent, error) {
	if purchaseID == 0 {
		return nil, newValidationError("purchase_id", ErrMissingRequiredField)
	}
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, newStorageError("load purchase", err)
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	events, err := s.trackingRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, newStorageError("list tracking events", err)
	}
	if events == nil {
		events = []models.DeliveryTrackingEvent{}
	}
	return events, nil
}

// PurchaseDetail 获取采购单详情
func (s *DeliveryHistoryService) PurchaseDetail(ctx context.Context, purchaseID uint) (*PurchaseDetail, error) {
	if purchaseID == 0 {
		return nil, newValidationError("purchase_id", ErrMissingRequiredField)
	}
	purchase, err := s.purchaseRepo.GetWithItems(ctx, purchaseID)
	if err != nil {
		return nil, newStorageError("load purchase", err)
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	events, err := s.trackingRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, newStorageError("list tracking events", err)
	}
	if events == nil {
		events = []models.DeliveryTrackingEvent{}
	}

	// 先累加再取整，与历史汇总保持一致
	totalQuantity := decimal.Zero
	totalCost := decimal.Zero
	for _, item := range purchase.Items {
		totalQuantity = totalQuantity.Add(item.Quantity.Decimal)
		totalCost = totalCost.Add(item.Quantity.Mul(item.UnitPrice.Decimal))
	}
	return &PurchaseDetail{
		Purchase:       purchase,
		ItemCount:      int64(len(purchase.Items)),
		TotalQuantity:  models.NewQuantity(totalQuantity),
		TotalCost:      models.NewMoneyFromDecimal(totalCost),
		DeliveryWindow: s.deliveryWindow(purchase.Status, purchase.ExpectedDeliveryDate, s.now()),
		Events:         events,
	}, nil
}

func (s *DeliveryHistoryService) summaryFromRow(row repository.DeliverySummaryRow, reference time.Time) DeliverySummary {
	p := row.Purchase
	return DeliverySummary{
		PurchaseID:           p.ID,
		Reference:            p.Reference,
		PurchaseDate:         p.PurchaseDate,
		ExpectedDeliveryDate: p.ExpectedDeliveryDate,
		DeliveryDate:         p.DeliveryDate,
		Status:               p.Status,
		ItemCount:            row.Rollup.ItemCount,
		TotalQuantity:        row.Rollup.TotalQuantity,
		TotalCost:            row.Rollup.TotalCost,
		DeliveryWindow:       s.deliveryWindow(p.Status, p.ExpectedDeliveryDate, reference),
	}
}

// deliveryWindow 对未关闭采购单的预计交付日期分类，已关闭的不适用
func (s *DeliveryHistoryService) deliveryWindow(status string, expected *time.Time, reference time.Time) expiry.Classification {
	if status == constants.DeliveryStatusDelivered || status == constants.DeliveryStatusCancelled {
		return expiry.NotApplicable()
	}
	return s.classifier.Classify(expected, reference)
}

package service

import (
	"context"
	"time"

	"github.com/farm-ledger/internal/constants"
	"github.com/farm-ledger/internal/expiry"
	"github.com/farm-ledger/internal/models"
	"github.com/farm-ledger/internal/repository"
)

// BatchExpiry 库存批次及其到期分类
type BatchExpiry struct {
	Batch  models.InventoryBatch `json:"batch"`
	Expiry expiry.Classification `json:"expiry"`
}

// ExpirySummary 报表页内各分类的批次数
type ExpirySummary struct {
	Expired       int `json:"expired"`
	ExpiringSoon  int `json:"expiring_soon"`
	Valid         int `json:"valid"`
	NotApplicable int `json:"not_applicable"`
}

func (s *ExpirySummary) add(c expiry.Classification) {
	switch c.Label {
	case constants.ExpiryExpired:
		s.Expired++
	case constants.ExpiringSoon:
		s.ExpiringSoon++
	case constants.ExpiryValid:
		s.Valid++
	default:
		s.NotApplicable++
	}
}

// ExpiryReport 到期报表（分页）
type ExpiryReport struct {
	ReferenceDate time.Time     `json:"reference_date"`
	Items         []BatchExpiry `json:"items"`
	Total         int64         `json:"total"`
	Page          int           `json:"page"`
	PageSize      int           `json:"page_size"`
	Summary       ExpirySummary `json:"summary"`
}

// InventoryBatchService 库存批次到期服务
type InventoryBatchService struct {
	batchRepo  repository.InventoryBatchRepository
	classifier expiry.Classifier
	now        func() time.Time
}

// NewInventoryBatchService 创建库存批次服务，loc 为判断“今天”的业务时区，nil 表示 UTC
func NewInventoryBatchService(batchRepo repository.InventoryBatchRepository, expiringSoonWindow int, loc *time.Location) *InventoryBatchService {
	return &InventoryBatchService{
		batchRepo:  batchRepo,
		classifier: expiry.NewClassifier(expiringSoonWindow).In(loc),
		now:        time.Now,
	}
}

// ExpiryReport 按参考日期分类一页批次，reference 为零值时取今天
func (s *InventoryBatchService) ExpiryReport(ctx context.Context, filter repository.InventoryBatchListFilter, reference time.Time) (*ExpiryReport, error) {
	if reference.IsZero() {
		reference = s.now()
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	batches, total, err := s.batchRepo.List(ctx, filter)
	if err != nil {
		return nil, newStorageError("list inventory batches", err)
	}

	report := &ExpiryReport{
		ReferenceDate: s.classifier.Day(reference),
		Items:         make([]BatchExpiry, 0, len(batches)),
		Total:         total,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	}
	for _, batch := range batches {
		c := s.classifier.Classify(batch.ExpiryDate, reference)
		report.Summary.add(c)
		report.Items = append(report.Items, BatchExpiry{Batch: batch, Expiry: c})
	}
	return report, nil
}

// ScanExpiring 遍历窗口内到期的全部批次，返回已过期与即将到期的批次
func (s *InventoryBatchService) ScanExpiring(ctx context.Context, reference time.Time) ([]BatchExpiry, error) {
	if reference.IsZero() {
		reference = s.now()
	}
	horizon := s.classifier.Horizon(reference, s.classifier.WindowDays)
	filter := repository.InventoryBatchListFilter{
		Page:           1,
		PageSize:       scanPageSize,
		ExpiringBefore: &horizon,
	}

	found := make([]BatchExpiry, 0)
	for {
		batches, total, err := s.batchRepo.List(ctx, filter)
		if err != nil {
			return nil, newStorageError("scan inventory batches", err)
		}
		for _, batch := range batches {
			c := s.classifier.Classify(batch.ExpiryDate, reference)
			if c.IsExpired() || c.IsExpiringSoon() {
				found = append(found, BatchExpiry{Batch: batch, Expiry: c})
			}
		}
		if len(batches) == 0 || int64(filter.Page*filter.PageSize) >= total {
			return found, nil
		}
		filter.Page++
	}
}

// Location 读取参考日期所用的业务时区
func (s *InventoryBatchService) Location() *time.Location {
	if s.classifier.Location == nil {
		return time.UTC
	}
	return s.classifier.Location
}

// ExpiryHorizon 计算 ExpiringBefore 上界（参考日之后 days 天），reference 为零值时取今天
func (s *InventoryBatchService) ExpiryHorizon(reference time.Time, days int) time.Time {
	if reference.IsZero() {
		reference = s.now()
	}
	return s.classifier.Horizon(reference, days)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
	scanPageSize    = 200
)

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

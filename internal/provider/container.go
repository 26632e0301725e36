package provider

import (
	"github.com/farm-ledger/internal/authz"
	"github.com/farm-ledger/internal/cache"
	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/models"
	"github.com/farm-ledger/internal/queue"
	"github.com/farm-ledger/internal/repository"
	"github.com/farm-ledger/internal/service"

	"gorm.io/gorm"
)

// Container 依赖容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// 仓库
	PurchaseRepo         repository.PurchaseRepository
	SupplierRepo         repository.SupplierRepository
	DeliveryTrackingRepo repository.DeliveryTrackingRepository
	DeliveryHistoryRepo  repository.DeliveryHistoryRepository
	InventoryBatchRepo   repository.InventoryBatchRepository

	// 服务
	HistoryCache           *cache.DeliveryHistoryCache
	AuthzService           *authz.Service
	TokenService           *service.TokenService
	AuditTrailWriter       *service.AuditTrailWriter
	DeliveryService        *service.DeliveryService
	DeliveryHistoryService *service.DeliveryHistoryService
	InventoryBatchService  *service.InventoryBatchService
}

// NewContainer 基于 models.DB 创建容器。台账表结构缺失或权限存储加载失败时 panic
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		DB:          models.DB,
		QueueClient: queueClient,
	}

	if err := service.VerifyLedgerSchema(c.DB); err != nil {
		logger.Errorw("provider_schema_check_failed", "error", err)
		panic(err)
	}

	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := c.DB
	c.PurchaseRepo = repository.NewPurchaseRepository(db)
	c.SupplierRepo = repository.NewSupplierRepository(db)
	c.DeliveryTrackingRepo = repository.NewDeliveryTrackingRepository(db)
	c.DeliveryHistoryRepo = repository.NewDeliveryHistoryRepository(db)
	c.InventoryBatchRepo = repository.NewInventoryBatchRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	delivery := c.Config.Delivery
	businessLocation, err := delivery.BusinessLocation()
	if err != nil {
		logger.Errorw("provider_load_business_timezone_failed", "error", err)
		panic(err)
	}
	c.HistoryCache = cache.NewDeliveryHistoryCache(delivery.HistoryCacheTTL())
	c.TokenService = service.NewTokenService(c.Config.JWT)
	c.AuditTrailWriter = service.NewAuditTrailWriter(c.DeliveryTrackingRepo)

	var publisher service.DeliveryEventPublisher
	if delivery.NotifyOnStatusChange && c.QueueClient.Enabled() {
		publisher = c.QueueClient
	}
	c.DeliveryService = service.NewDeliveryService(
		c.PurchaseRepo,
		c.AuditTrailWriter,
		publisher,
		c.HistoryCache,
		c.Config.Database.StatementTimeout(),
	)
	c.DeliveryHistoryService = service.NewDeliveryHistoryService(
		c.DeliveryHistoryRepo,
		c.SupplierRepo,
		c.PurchaseRepo,
		c.DeliveryTrackingRepo,
		c.HistoryCache,
		service.DeliveryHistoryOptions{
			DefaultLimit:       delivery.HistoryDefaultLimit,
			MaxLimit:           delivery.HistoryMaxLimit,
			ExpiringSoonWindow: delivery.ExpiringSoonWindowDays,
			Location:           businessLocation,
		},
	)
	c.InventoryBatchService = service.NewInventoryBatchService(c.InventoryBatchRepo, delivery.ExpiringSoonWindowDays, businessLocation)
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

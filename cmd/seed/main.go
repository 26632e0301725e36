package main

import (
	"context"
	"fmt"
	"time"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/constants"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/models"
	"github.com/farm-ledger/internal/repository"
	"github.com/farm-ledger/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedLine struct {
	name  string
	unit  string
	qty   string
	price string
}

type seedPurchase struct {
	supplier  int
	daysAgo   int
	expectIn  int
	reference string
	lines     []seedLine
	steps     []service.TransitionInput
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	var existing int64
	if err := models.DB.Model(&models.Supplier{}).Count(&existing).Error; err != nil {
		stdLog.Fatalf("Failed to inspect suppliers: %v", err)
	}
	if existing > 0 {
		stdLog.Printf("Suppliers already present (%d), skipping seed", existing)
		return
	}

	suppliers := []models.Supplier{
		{Name: "Valley Feed Co", ContactName: "Mara Ortiz", Phone: "555-0101", IsActive: true},
		{Name: "Hillside Veterinary Supply", ContactName: "Sam Reid", Phone: "555-0144", IsActive: true},
		{Name: "North Field Seeds", ContactName: "Ira Holm", Email: "orders@northfield.example", IsActive: true},
	}
	if err := models.DB.Create(&suppliers).Error; err != nil {
		stdLog.Fatalf("Failed to create suppliers: %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	delivered := today.AddDate(0, 0, -2)
	purchases := []seedPurchase{
		{
			supplier: 0, daysAgo: 14, expectIn: 5, reference: "VF-2201",
			lines: []seedLine{{"layer mash", "kg", "500", "0.62"}, {"oyster shell", "kg", "50", "0.35"}},
			steps: []service.TransitionInput{
				{TargetStatus: constants.DeliveryStatusShipped, Fields: service.DeliveryFields{TrackingNumber: "VF-TRK-88", Carrier: "FarmFreight"}},
				{TargetStatus: constants.DeliveryStatusDelivered, Fields: service.DeliveryFields{DeliveryDate: &delivered}},
			},
		},
		{
			supplier: 0, daysAgo: 3, expectIn: 10, reference: "VF-2240",
			lines: []seedLine{{"grower pellets", "kg", "750", "0.58"}},
		},
		{
			supplier: 1, daysAgo: 9, expectIn: 6, reference: "HV-0912",
			lines: []seedLine{{"poultry vaccine", "dose", "1000", "0.08"}, {"wormer", "bottle", "6", "14.50"}},
			steps: []service.TransitionInput{
				{TargetStatus: constants.DeliveryStatusShipped, Fields: service.DeliveryFields{TrackingNumber: "HV-77812", Carrier: "ColdChain Express"}},
				{TargetStatus: constants.DeliveryStatusDelayed, Fields: service.DeliveryFields{Notes: "held at depot, cold storage check"}},
			},
		},
		{
			supplier: 2, daysAgo: 30, expectIn: 7, reference: "NF-5530",
			lines: []seedLine{{"winter wheat seed", "kg", "1200", "0.91"}},
			steps: []service.TransitionInput{
				{TargetStatus: constants.DeliveryStatusCancelled, Fields: service.DeliveryFields{Notes: "supplier out of stock"}},
			},
		},
	}

	purchaseRepo := repository.NewPurchaseRepository(models.DB)
	trackingRepo := repository.NewDeliveryTrackingRepository(models.DB)
	deliveryService := service.NewDeliveryService(purchaseRepo, service.NewAuditTrailWriter(trackingRepo), nil, nil, 0)
	seedActor := service.AuthContext{ActorID: 1, Username: "seed", Role: constants.RoleAdmin}
	ctx := context.Background()

	for _, p := range purchases {
		order, err := createPurchase(models.DB, suppliers[p.supplier].ID, today, p)
		if err != nil {
			stdLog.Fatalf("Failed to create purchase %s: %v", p.reference, err)
		}
		for _, step := range p.steps {
			step.PurchaseID = order.ID
			step.RequestID = "seed"
			if _, err := deliveryService.Transition(ctx, seedActor, step); err != nil {
				stdLog.Fatalf("Failed to move purchase %s to %s: %v", p.reference, step.TargetStatus, err)
			}
		}
	}

	supplierID := suppliers[1].ID
	expiry := func(days int) *time.Time {
		v := today.AddDate(0, 0, days)
		return &v
	}
	batches := []models.InventoryBatch{
		{BatchCode: "VAC-24-01", ItemName: "poultry vaccine", Category: "medicine", Unit: "dose", SupplierID: &supplierID, ExpiryDate: expiry(-4)},
		{BatchCode: "VAC-24-02", ItemName: "poultry vaccine", Category: "medicine", Unit: "dose", SupplierID: &supplierID, ExpiryDate: expiry(12)},
		{BatchCode: "WRM-11", ItemName: "wormer", Category: "medicine", Unit: "bottle", SupplierID: &supplierID, ExpiryDate: expiry(240)},
		{BatchCode: "FEED-LM-7", ItemName: "layer mash", Category: "feed", Unit: "kg", ExpiryDate: expiry(45)},
		{BatchCode: "GRIT-1", ItemName: "grit", Category: "feed", Unit: "kg"},
	}
	for i := range batches {
		batches[i].Quantity = models.NewQuantity(decimal.NewFromInt(int64(100 * (i + 1))))
		received := today.AddDate(0, 0, -20)
		batches[i].ReceivedDate = &received
	}
	if err := models.DB.Create(&batches).Error; err != nil {
		stdLog.Fatalf("Failed to create inventory batches: %v", err)
	}

	fmt.Printf("Seeded %d suppliers, %d purchases and %d batches\n", len(suppliers), len(purchases), len(batches))
}

func createPurchase(db *gorm.DB, supplierID uint, today time.Time, p seedPurchase) (*models.PurchaseOrder, error) {
	expected := today.AddDate(0, 0, -p.daysAgo+p.expectIn)
	order := &models.PurchaseOrder{
		SupplierID:           supplierID,
		PurchaseDate:         today.AddDate(0, 0, -p.daysAgo),
		ExpectedDeliveryDate: &expected,
		Status:               constants.DeliveryStatusPending,
		Reference:            p.reference,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, line := range p.lines {
			item := models.PurchaseItem{
				PurchaseID: order.ID,
				ItemName:   line.name,
				Unit:       line.unit,
				Quantity:   models.NewQuantity(decimal.RequireFromString(line.qty)),
				UnitPrice:  models.NewMoneyFromDecimal(decimal.RequireFromString(line.price)),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

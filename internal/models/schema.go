package models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrSchemaMissing 缺少必需的表或列，需执行 migrate 命令
var ErrSchemaMissing = errors.New("required schema is missing")

type requiredTable struct {
	model   interface{}
	name    string
	columns []string
}

var requiredSchema = []requiredTable{
	{model: &Supplier{}, name: "suppliers", columns: []string{"id", "name"}},
	{model: &PurchaseOrder{}, name: "purchases", columns: []string{
		"id", "supplier_id", "purchase_date", "expected_delivery_date", "delivery_date", "status", "updated_at",
	}},
	{model: &PurchaseItem{}, name: "purchase_items", columns: []string{"id", "purchase_id", "quantity", "unit_price"}},
	{model: &DeliveryTrackingEvent{}, name: "delivery_tracking", columns: []string{
		"id", "purchase_id", "status_update", "status_date", "tracking_number", "carrier", "notes",
	}},
	{model: &InventoryBatch{}, name: "inventory_batches", columns: []string{"id", "batch_code", "expiry_date"}},
}

// VerifySchema 校验台账读写的表与列是否存在，不执行任何 DDL
func VerifySchema(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("%w: database not initialized", ErrSchemaMissing)
	}
	migrator := db.Migrator()
	missing := make([]string, 0)
	for _, table := range requiredSchema {
		if !migrator.HasTable(table.model) {
			missing = append(missing, table.name)
			continue
		}
		for _, column := range table.columns {
			if !migrator.HasColumn(table.model, column) {
				missing = append(missing, table.name+"."+column)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, strings.Join(missing, ", "))
	}
	return nil
}

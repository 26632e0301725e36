package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	return db
}

func TestMoneyJSONAndScan(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"12.345"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("unexpected rounding: %s", m.String())
	}
	if err := json.Unmarshal([]byte(`7.1`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"7.10"` {
		t.Fatalf("unexpected json: %s", raw)
	}

	// sqlite 对 decimal 列 SUM() 返回 float64
	if err := m.Scan(float64(0.1) + float64(0.2)); err != nil {
		t.Fatalf("scan float failed: %v", err)
	}
	if m.String() != "0.30" {
		t.Fatalf("expected float noise rounded away, got %s", m.String())
	}
	if err := m.Scan(nil); err != nil || !m.IsZero() {
		t.Fatalf("expected nil scan to yield zero, got %s err=%v", m.String(), err)
	}
}

func TestQuantityString(t *testing.T) {
	q := NewQuantity(decimal.RequireFromString("12.5000"))
	if q.String() != "12.5" {
		t.Fatalf("unexpected quantity string: %s", q.String())
	}
	item := PurchaseItem{
		Quantity:  NewQuantity(decimal.RequireFromString("2.5")),
		UnitPrice: NewMoneyFromDecimal(decimal.RequireFromString("3.99")),
	}
	if item.LineTotal().String() != "9.98" {
		t.Fatalf("unexpected line total: %s", item.LineTotal().String())
	}
}

func TestVerifySchemaReportsMissingTables(t *testing.T) {
	db := openTestDB(t)
	if err := db.AutoMigrate(&Supplier{}, &PurchaseOrder{}); err != nil {
		t.Fatalf("partial migrate failed: %v", err)
	}

	err := VerifySchema(db)
	if !errors.Is(err, ErrSchemaMissing) {
		t.Fatalf("expected schema missing, got %v", err)
	}
	if !strings.Contains(err.Error(), "delivery_tracking") {
		t.Fatalf("expected delivery_tracking in message, got %v", err)
	}
	if strings.Contains(err.Error(), "purchases") {
		t.Fatalf("purchases exists and should not be reported: %v", err)
	}
}

func TestVerifySchemaPassesAfterMigrate(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := VerifySchema(db); err != nil {
		t.Fatalf("expected schema ok, got %v", err)
	}
}

func TestTrackingEventsAreWriteOnce(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	event := DeliveryTrackingEvent{PurchaseID: 1, StatusUpdate: "shipped", StatusDate: time.Now()}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("create event failed: %v", err)
	}

	if err := db.Model(&event).Update("notes", "edited").Error; !errors.Is(err, ErrTrackingEventImmutable) {
		t.Fatalf("expected update rejected, got %v", err)
	}
	if err := db.Delete(&event).Error; !errors.Is(err, ErrTrackingEventImmutable) {
		t.Fatalf("expected delete rejected, got %v", err)
	}

	var count int64
	db.Model(&DeliveryTrackingEvent{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected event kept, count=%d", count)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "dsn", DBPoolConfig{}, false); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

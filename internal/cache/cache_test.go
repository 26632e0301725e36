package cache

import (
	"context"
	"testing"
	"time"

	"github.com/farm-ledger/internal/config"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	ctx := context.Background()

	history := NewDeliveryHistoryCache(time.Minute)
	if history.Enabled() {
		t.Fatalf("cache should be disabled without redis")
	}
	var dest []string
	generation, hit, err := history.Load(ctx, 1, 10, &dest)
	if err != nil || hit || generation != 0 {
		t.Fatalf("expected miss without error, got generation=%d hit=%v err=%v", generation, hit, err)
	}
	if err := history.Store(ctx, 1, 10, generation, []string{"x"}); err != nil {
		t.Fatalf("store should be a no-op, got %v", err)
	}
	if err := history.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate should be a no-op, got %v", err)
	}
	if Client() != nil {
		t.Fatalf("client should be nil when disabled")
	}
}

func TestZeroTTLDisablesHistoryCache(t *testing.T) {
	var nilCache *DeliveryHistoryCache
	if nilCache.Enabled() {
		t.Fatalf("nil cache should be disabled")
	}
	if NewDeliveryHistoryCache(0).Enabled() {
		t.Fatalf("zero ttl should disable the cache")
	}
}

func TestSupplierHistoryKey(t *testing.T) {
	Use(nil, "farm")
	if got := BuildKey(supplierHistoryKey(42)); got != "farm:delivery_history:supplier:42" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := BuildKey(supplierHistoryGenerationKey(42)); got != "farm:delivery_history:supplier:42:gen" {
		t.Fatalf("unexpected generation key: %s", got)
	}
}

func TestTTLSecondsRoundsUpToOne(t *testing.T) {
	if got := ttlSeconds(500 * time.Millisecond); got != 1 {
		t.Fatalf("sub-second ttl should expire after one second, got %d", got)
	}
	if got := ttlSeconds(90 * time.Second); got != 90 {
		t.Fatalf("expected 90 seconds, got %d", got)
	}
}

package cache

import (
	"context"
	"testing"

	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/models"
)

func TestSnapshotKeysNamespaced(t *testing.T) {
	if got := shopSnapshotKey(42); got != "catalog:shop:42" {
		t.Fatalf("unexpected shop key: %s", got)
	}
	if got := itemSnapshotKey(7); got != "catalog:item:7" {
		t.Fatalf("unexpected item key: %s", got)
	}
}

func TestCatalogSnapshotsNoopWhenRedisDisabled(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	if Enabled() {
		t.Fatalf("cache should be disabled")
	}

	ctx := context.Background()

	shop, hit, err := GetShopSnapshot(ctx, 1)
	if err != nil || hit || shop != nil {
		t.Fatalf("disabled cache should report miss, got hit=%v err=%v", hit, err)
	}
	if err := SetShopSnapshot(ctx, &models.Shop{ID: 1, Name: "Khmer Kitchen"}); err != nil {
		t.Fatalf("set shop snapshot should be a no-op: %v", err)
	}
	if err := DelShopSnapshot(ctx, 1); err != nil {
		t.Fatalf("del shop snapshot should be a no-op: %v", err)
	}

	item, hit, err := GetItemSnapshot(ctx, 1)
	if err != nil || hit || item != nil {
		t.Fatalf("disabled cache should report miss, got hit=%v err=%v", hit, err)
	}
	if err := SetItemSnapshot(ctx, &models.Item{ID: 1, Name: "Beef Lok Lak"}); err != nil {
		t.Fatalf("set item snapshot should be a no-op: %v", err)
	}
	if err := DelItemSnapshot(ctx, 1); err != nil {
		t.Fatalf("del item snapshot should be a no-op: %v", err)
	}
}

func TestCatalogSnapshotsGuardZeroID(t *testing.T) {
	ctx := context.Background()

	if _, hit, err := GetShopSnapshot(ctx, 0); hit || err != nil {
		t.Fatalf("zero shop id should miss, got hit=%v err=%v", hit, err)
	}
	if err := SetShopSnapshot(ctx, nil); err != nil {
		t.Fatalf("nil shop should be a no-op: %v", err)
	}
	if _, hit, err := GetItemSnapshot(ctx, 0); hit || err != nil {
		t.Fatalf("zero item id should miss, got hit=%v err=%v", hit, err)
	}
	if err := SetItemSnapshot(ctx, nil); err != nil {
		t.Fatalf("nil item should be a no-op: %v", err)
	}
}

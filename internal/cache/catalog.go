package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/khornSaokhouch/server/internal/models"
)

// 菜单浏览缓存：店铺与菜品详情采用 cache-aside，
// 命中不到或 Redis 未启用时直接回源数据库。
// 选项级别的深层变更不做精确失效，靠短 TTL 收敛。
const catalogCacheTTL = time.Minute

func shopSnapshotKey(shopID uint) string {
	return fmt.Sprintf("catalog:shop:%d", shopID)
}

func itemSnapshotKey(itemID uint) string {
	return fmt.Sprintf("catalog:item:%d", itemID)
}

// GetShopSnapshot 获取店铺详情快照
func GetShopSnapshot(ctx context.Context, shopID uint) (*models.Shop, bool, error) {
	if shopID == 0 {
		return nil, false, nil
	}
	var shop models.Shop
	hit, err := GetJSON(ctx, shopSnapshotKey(shopID), &shop)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &shop, true, nil
}

// SetShopSnapshot 写入店铺详情快照
func SetShopSnapshot(ctx context.Context, shop *models.Shop) error {
	if shop == nil || shop.ID == 0 {
		return nil
	}
	return SetJSON(ctx, shopSnapshotKey(shop.ID), shop, catalogCacheTTL)
}

// DelShopSnapshot 店铺变更后失效快照
func DelShopSnapshot(ctx context.Context, shopID uint) error {
	if shopID == 0 {
		return nil
	}
	return Del(ctx, shopSnapshotKey(shopID))
}

// GetItemSnapshot 获取菜品详情快照（含选项组）
func GetItemSnapshot(ctx context.Context, itemID uint) (*models.Item, bool, error) {
	if itemID == 0 {
		return nil, false, nil
	}
	var item models.Item
	hit, err := GetJSON(ctx, itemSnapshotKey(itemID), &item)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &item, true, nil
}

// SetItemSnapshot 写入菜品详情快照
func SetItemSnapshot(ctx context.Context, item *models.Item) error {
	if item == nil || item.ID == 0 {
		return nil
	}
	return SetJSON(ctx, itemSnapshotKey(item.ID), item, catalogCacheTTL)
}

// DelItemSnapshot 菜品变更后失效快照
func DelItemSnapshot(ctx context.Context, itemID uint) error {
	if itemID == 0 {
		return nil
	}
	return Del(ctx, itemSnapshotKey(itemID))
}

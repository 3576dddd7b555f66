package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCatalogServiceTest(t *testing.T) (*gorm.DB, *CatalogService) {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_svc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Shop{}, &models.Category{}, &models.Item{},
		&models.ItemOptionGroup{}, &models.ItemOption{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	svc := NewCatalogService(
		repository.NewShopRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewItemRepository(db),
	)
	return db, svc
}

func TestCatalogReadsReflectWrites(t *testing.T) {
	db, svc := setupCatalogServiceTest(t)

	shop := &models.Shop{OwnerID: 1, Name: "Phnom Penh Noodles"}
	if err := svc.CreateShop(shop); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	got, err := svc.GetShop(shop.ID)
	if err != nil {
		t.Fatalf("查询店铺失败: %v", err)
	}
	if got.Name != shop.Name || !got.IsActive {
		t.Fatalf("店铺详情不符: %+v", got)
	}

	item := &models.Item{ShopID: shop.ID, Name: "Kuy Teav", PriceCents: 450, IsAvailable: true}
	if err := svc.CreateItem(item); err != nil {
		t.Fatalf("创建菜品失败: %v", err)
	}
	if err := svc.CreateOptionGroup(&models.ItemOptionGroup{ItemID: item.ID, Name: "Size", MaxSelect: 1}); err != nil {
		t.Fatalf("创建选项组失败: %v", err)
	}

	loaded, err := svc.GetItem(item.ID)
	if err != nil {
		t.Fatalf("查询菜品失败: %v", err)
	}
	if len(loaded.OptionGroups) != 1 || loaded.OptionGroups[0].Name != "Size" {
		t.Fatalf("菜品选项组不符: %+v", loaded.OptionGroups)
	}

	loaded.IsAvailable = false
	if err := svc.UpdateItem(loaded); err != nil {
		t.Fatalf("更新菜品失败: %v", err)
	}
	reloaded, err := svc.GetItem(item.ID)
	if err != nil {
		t.Fatalf("重查菜品失败: %v", err)
	}
	if reloaded.IsAvailable {
		t.Fatalf("下架状态未生效")
	}

	if err := svc.DeleteItem(item.ID); err != nil {
		t.Fatalf("删除菜品失败: %v", err)
	}
	if _, err := svc.GetItem(item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("已删除菜品应返回 ErrItemNotFound, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Item{}).Count(&count).Error; err != nil {
		t.Fatalf("统计菜品失败: %v", err)
	}
	if count != 0 {
		t.Fatalf("软删除后可见菜品应为 0, got %d", count)
	}
}

func TestCatalogShopDeleteHidesShop(t *testing.T) {
	_, svc := setupCatalogServiceTest(t)

	shop := &models.Shop{OwnerID: 1, Name: "Closing Soon"}
	if err := svc.CreateShop(shop); err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	if err := svc.DeleteShop(shop.ID); err != nil {
		t.Fatalf("删除店铺失败: %v", err)
	}
	if _, err := svc.GetShop(shop.ID); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("已删除店铺应返回 ErrShopNotFound, got %v", err)
	}
}

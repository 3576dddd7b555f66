package service

import (
	"context"

	"github.com/khornSaokhouch/server/internal/cache"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
)

// CatalogService 店铺、分类与菜单维护
type CatalogService struct {
	shopRepo     repository.ShopRepository
	categoryRepo repository.CategoryRepository
	itemRepo     repository.ItemRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(
	shopRepo repository.ShopRepository,
	categoryRepo repository.CategoryRepository,
	itemRepo repository.ItemRepository,
) *CatalogService {
	return &CatalogService{shopRepo: shopRepo, categoryRepo: categoryRepo, itemRepo: itemRepo}
}

// CreateShop 创建店铺
func (s *CatalogService) CreateShop(shop *models.Shop) error {
	shop.IsActive = true
	return s.shopRepo.Create(shop)
}

// UpdateShop 更新店铺
func (s *CatalogService) UpdateShop(shop *models.Shop) error {
	existing, err := s.shopRepo.GetByID(shop.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrShopNotFound
	}
	if err := s.shopRepo.Update(shop); err != nil {
		return err
	}
	_ = cache.DelShopSnapshot(context.Background(), shop.ID)
	return nil
}

// GetShop 获取店铺，详情走缓存
func (s *CatalogService) GetShop(id uint) (*models.Shop, error) {
	if cached, hit, err := cache.GetShopSnapshot(context.Background(), id); err == nil && hit {
		return cached, nil
	}
	shop, err := s.shopRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	_ = cache.SetShopSnapshot(context.Background(), shop)
	return shop, nil
}

// ListShops 店铺列表
func (s *CatalogService) ListShops(filter repository.ShopListFilter) ([]models.Shop, int64, error) {
	return s.shopRepo.List(filter)
}

// DeleteShop 删除店铺
func (s *CatalogService) DeleteShop(id uint) error {
	if err := s.shopRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelShopSnapshot(context.Background(), id)
	return nil
}

// CreateCategory 创建分类
func (s *CatalogService) CreateCategory(category *models.Category) error {
	shop, err := s.shopRepo.GetByID(category.ShopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}
	return s.categoryRepo.Create(category)
}

// UpdateCategory 更新分类
func (s *CatalogService) UpdateCategory(category *models.Category) error {
	existing, err := s.categoryRepo.GetByID(category.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	return s.categoryRepo.Update(category)
}

// DeleteCategory 删除分类
func (s *CatalogService) DeleteCategory(id uint) error {
	return s.categoryRepo.Delete(id)
}

// ListCategories 店铺分类列表
func (s *CatalogService) ListCategories(shopID uint, onlyActive bool) ([]models.Category, error) {
	return s.categoryRepo.ListByShop(shopID, onlyActive)
}

// CreateItem 创建菜品
func (s *CatalogService) CreateItem(item *models.Item) error {
	shop, err := s.shopRepo.GetByID(item.ShopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}
	if item.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*item.CategoryID)
		if err != nil {
			return err
		}
		if category == nil || category.ShopID != item.ShopID {
			return ErrCategoryNotFound
		}
	}
	return s.itemRepo.Create(item)
}

// UpdateItem 更新菜品
func (s *CatalogService) UpdateItem(item *models.Item) error {
	existing, err := s.itemRepo.GetByID(item.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrItemNotFound
	}
	if err := s.itemRepo.Update(item); err != nil {
		return err
	}
	_ = cache.DelItemSnapshot(context.Background(), item.ID)
	return nil
}

// DeleteItem 删除菜品
func (s *CatalogService) DeleteItem(id uint) error {
	if err := s.itemRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelItemSnapshot(context.Background(), id)
	return nil
}

// GetItem 获取菜品（含选项），详情走缓存
func (s *CatalogService) GetItem(id uint) (*models.Item, error) {
	if cached, hit, err := cache.GetItemSnapshot(context.Background(), id); err == nil && hit {
		return cached, nil
	}
	item, err := s.itemRepo.GetByIDWithOptions(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	_ = cache.SetItemSnapshot(context.Background(), item)
	return item, nil
}

// ListItems 菜品列表
func (s *CatalogService) ListItems(filter repository.ItemListFilter) ([]models.Item, int64, error) {
	return s.itemRepo.List(filter)
}

// CreateOptionGroup 创建菜品选项组
func (s *CatalogService) CreateOptionGroup(group *models.ItemOptionGroup) error {
	item, err := s.itemRepo.GetByID(group.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	if err := s.itemRepo.CreateOptionGroup(group); err != nil {
		return err
	}
	_ = cache.DelItemSnapshot(context.Background(), group.ItemID)
	return nil
}

// UpdateOptionGroup 更新选项组
func (s *CatalogService) UpdateOptionGroup(group *models.ItemOptionGroup) error {
	return s.itemRepo.UpdateOptionGroup(group)
}

// DeleteOptionGroup 删除选项组及其选项
func (s *CatalogService) DeleteOptionGroup(id uint) error {
	return s.itemRepo.DeleteOptionGroup(id)
}

// CreateOption 创建选项
func (s *CatalogService) CreateOption(option *models.ItemOption) error {
	return s.itemRepo.CreateOption(option)
}

// UpdateOption 更新选项
func (s *CatalogService) UpdateOption(option *models.ItemOption) error {
	return s.itemRepo.UpdateOption(option)
}

// DeleteOption 删除选项
func (s *CatalogService) DeleteOption(id uint) error {
	return s.itemRepo.DeleteOption(id)
}

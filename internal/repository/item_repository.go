package repository

import (
	"errors"

	"github.com/khornSaokhouch/server/internal/models"

	"gorm.io/gorm"
)

// ItemRepository 菜品数据访问接口
type ItemRepository interface {
	Create(item *models.Item) error
	Update(item *models.Item) error
	Delete(id uint) error
	GetByID(id uint) (*models.Item, error)
	GetByIDWithOptions(id uint) (*models.Item, error)
	GetByIDs(ids []uint) ([]models.Item, error)
	List(filter ItemListFilter) ([]models.Item, int64, error)
	CreateOptionGroup(group *models.ItemOptionGroup) error
	UpdateOptionGroup(group *models.ItemOptionGroup) error
	DeleteOptionGroup(id uint) error
	CreateOption(option *models.ItemOption) error
	UpdateOption(option *models.ItemOption) error
	DeleteOption(id uint) error
	GetOptionsByIDs(ids []uint) ([]models.ItemOption, error)
	WithTx(tx *gorm.DB) *GormItemRepository
}

// GormItemRepository GORM 实现
type GormItemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建菜品仓库
func NewItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormItemRepository) WithTx(tx *gorm.DB) *GormItemRepository {
	if tx == nil {
		return r
	}
	return &GormItemRepository{db: tx}
}

// Create 创建菜品
func (r *GormItemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

// Update 更新菜品
func (r *GormItemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// Delete 删除菜品
func (r *GormItemRepository) Delete(id uint) error {
	return r.db.Delete(&models.Item{}, id).Error
}

// GetByID 根据 ID 获取菜品
func (r *GormItemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByIDWithOptions 根据 ID 获取菜品（含规格组）
func (r *GormItemRepository) GetByIDWithOptions(id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.
		Preload("OptionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_option_groups.id asc")
		}).
		Preload("OptionGroups.Options").
		First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByIDs 根据 ID 列表获取菜品
func (r *GormItemRepository) GetByIDs(ids []uint) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	var items []models.Item
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List 菜品列表
func (r *GormItemRepository) List(filter ItemListFilter) ([]models.Item, int64, error) {
	query := r.db.Model(&models.Item{})

	if filter.ShopID != 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.OnlyAvailable {
		query = query.Where("is_available = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithOptions {
		query = query.Preload("OptionGroups").Preload("OptionGroups.Options")
	}

	var items []models.Item
	if err := query.Order("sort_order asc, id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CreateOptionGroup 创建规格组
func (r *GormItemRepository) CreateOptionGroup(group *models.ItemOptionGroup) error {
	return r.db.Create(group).Error
}

// UpdateOptionGroup 更新规格组
func (r *GormItemRepository) UpdateOptionGroup(group *models.ItemOptionGroup) error {
	return r.db.Save(group).Error
}

// DeleteOptionGroup 删除规格组及其规格项
func (r *GormItemRepository) DeleteOptionGroup(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.ItemOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ItemOptionGroup{}, id).Error
	})
}

// CreateOption 创建规格项
func (r *GormItemRepository) CreateOption(option *models.ItemOption) error {
	return r.db.Create(option).Error
}

// UpdateOption 更新规格项
func (r *GormItemRepository) UpdateOption(option *models.ItemOption) error {
	return r.db.Save(option).Error
}

// DeleteOption 删除规格项
func (r *GormItemRepository) DeleteOption(id uint) error {
	return r.db.Delete(&models.ItemOption{}, id).Error
}

// GetOptionsByIDs 根据 ID 列表获取规格项
func (r *GormItemRepository) GetOptionsByIDs(ids []uint) ([]models.ItemOption, error) {
	if len(ids) == 0 {
		return []models.ItemOption{}, nil
	}
	var options []models.ItemOption
	if err := r.db.Where("id IN ?", ids).Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

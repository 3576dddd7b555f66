package repository

import (
	"errors"
	"strings"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionRepository 促销数据访问接口
type PromotionRepository interface {
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	Delete(id uint) error
	GetByID(id uint) (*models.Promotion, error)
	GetByCode(code string) (*models.Promotion, error)
	GetByIDForUpdate(id uint) (*models.Promotion, error)
	CountRedemptionsByUser(promotionID, userID uint) (int64, error)
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// Create 创建促销
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新促销
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Save(promotion).Error
}

// Delete 删除促销
func (r *GormPromotionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Promotion{}, id).Error
}

// GetByID 根据 ID 获取促销
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetByCode 根据促销码获取促销
func (r *GormPromotionRepository) GetByCode(code string) (*models.Promotion, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var promotion models.Promotion
	result := r.db.Where("code = ?", code).Limit(1).Find(&promotion)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &promotion, nil
}

// GetByIDForUpdate 加行锁获取促销，须在事务内调用
func (r *GormPromotionRepository) GetByIDForUpdate(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&promotion, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// CountRedemptionsByUser 统计用户已核销该促销的次数（取消单不计）
func (r *GormPromotionRepository) CountRedemptionsByUser(promotionID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("promotion_id = ? AND user_id = ? AND status <> ?", promotionID, userID, constants.OrderStatusCancelled).
		Count(&count).Error
	return count, err
}

// List 促销列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	query := r.db.Model(&models.Promotion{})

	if filter.ShopID != 0 {
		query = query.Where("shop_id = ? OR shop_id IS NULL", filter.ShopID)
	}
	if filter.Search != "" {
		query = query.Where("code LIKE ? OR name LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var promotions []models.Promotion
	if err := query.Order("id desc").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

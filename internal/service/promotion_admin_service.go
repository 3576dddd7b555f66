package service

import (
	"strings"
	"time"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
)

// PromotionAdminService 促销维护（管理端）
type PromotionAdminService struct {
	promotionRepo repository.PromotionRepository
}

// NewPromotionAdminService 创建促销管理服务
func NewPromotionAdminService(promotionRepo repository.PromotionRepository) *PromotionAdminService {
	return &PromotionAdminService{promotionRepo: promotionRepo}
}

// CreatePromotion 创建促销
func (s *PromotionAdminService) CreatePromotion(promotion *models.Promotion) error {
	if err := validatePromotion(promotion); err != nil {
		return err
	}
	promotion.Code = strings.ToUpper(strings.TrimSpace(promotion.Code))
	return s.promotionRepo.Create(promotion)
}

// UpdatePromotion 更新促销
func (s *PromotionAdminService) UpdatePromotion(promotion *models.Promotion) error {
	existing, err := s.promotionRepo.GetByID(promotion.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPromotionNotFound
	}
	if err := validatePromotion(promotion); err != nil {
		return err
	}
	promotion.Code = strings.ToUpper(strings.TrimSpace(promotion.Code))
	return s.promotionRepo.Update(promotion)
}

// DeletePromotion 删除促销
func (s *PromotionAdminService) DeletePromotion(id uint) error {
	return s.promotionRepo.Delete(id)
}

// GetPromotion 获取促销
func (s *PromotionAdminService) GetPromotion(id uint) (*models.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

// ListPromotions 促销列表
func (s *PromotionAdminService) ListPromotions(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.promotionRepo.List(filter)
}

func validatePromotion(promotion *models.Promotion) error {
	if !promotion.EndsAt.After(promotion.StartsAt) {
		return ErrPromotionWindowWrong
	}
	switch promotion.Type {
	case constants.PromotionTypePercent:
		if promotion.Value <= 0 || promotion.Value > 100 {
			return ErrPromotionValueInvalid
		}
	case constants.PromotionTypeFixedAmount:
		if promotion.Value <= 0 {
			return ErrPromotionValueInvalid
		}
	default:
		return ErrPromotionValueInvalid
	}
	return nil
}

// PreviewDiscount 试算折扣，不核销
func (s *PromotionAdminService) PreviewDiscount(code string, subtotal models.Money, userID uint) (models.Money, error) {
	promotion, err := s.promotionRepo.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return 0, err
	}
	if promotion == nil {
		return 0, ErrPromotionNotFound
	}
	return EvaluatePromotion(promotion, subtotal, userID, time.Now(), s.promotionRepo.CountRedemptionsByUser)
}

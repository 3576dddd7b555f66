package service

import (
	"strings"
	"time"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
)

// PromotionService 促销解析与折扣评估
type PromotionService struct {
	promotionRepo repository.PromotionRepository
}

// NewPromotionService 创建促销服务
func NewPromotionService(promotionRepo repository.PromotionRepository) *PromotionService {
	return &PromotionService{promotionRepo: promotionRepo}
}

// Resolve 按促销码解析促销，码不存在视为未使用促销
func (s *PromotionService) Resolve(code string) (*models.Promotion, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return s.promotionRepo.GetByCode(code)
}

// usageCounter 查询用户已核销次数，订单事务内传入绑定事务的实现
type usageCounter func(promotionID, userID uint) (int64, error)

// EvaluatePromotion 按固定顺序校验促销并计算折扣金额。
// 校验顺序：启用 -> 时间窗 -> 最低消费 -> 次数限制；
// 折扣计算：percent 四舍五入，fixedamount 原值，之后依次受单次上限与小计钳制。
func EvaluatePromotion(promo *models.Promotion, subtotal models.Money, userID uint, asOf time.Time, countUsage usageCounter) (models.Money, error) {
	if promo == nil {
		return 0, nil
	}

	if !promo.IsActive {
		return 0, ErrPromotionInactive
	}
	// 窗口两端均为闭区间
	if asOf.Before(promo.StartsAt) || asOf.After(promo.EndsAt) {
		return 0, ErrPromotionOutOfWindow
	}
	if promo.MinOrderCents != nil && subtotal < *promo.MinOrderCents {
		return 0, ErrPromotionBelowMin
	}
	if promo.UsageLimit != nil && countUsage != nil {
		used, err := countUsage(promo.ID, userID)
		if err != nil {
			return 0, err
		}
		if used >= *promo.UsageLimit {
			return 0, ErrPromotionUsageLimit
		}
	}

	var discount models.Money
	switch promo.Type {
	case constants.PromotionTypePercent:
		discount = subtotal.Percent(promo.Value)
	case constants.PromotionTypeFixedAmount:
		discount = models.Money(promo.Value)
	default:
		return 0, ErrPromotionValueInvalid
	}
	if discount < 0 {
		discount = 0
	}

	if promo.MaxDiscountCents != nil {
		discount = discount.ClampTo(*promo.MaxDiscountCents)
	}
	discount = discount.ClampTo(subtotal)

	return discount, nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 促销活动
type Promotion struct {
	ID               uint           `gorm:"primarykey" json:"id"`             // 主键
	ShopID           *uint          `gorm:"index" json:"shop_id"`             // 限定店铺ID（空为全平台）
	Code             string         `gorm:"uniqueIndex;not null" json:"code"` // 促销码
	Name             string         `json:"name"`                             // 活动名称
	Type             string         `gorm:"not null" json:"type"`             // 折扣类型（percent/fixedamount）
	Value            int64          `gorm:"not null" json:"value"`            // 折扣值（percent 为百分比，fixedamount 为分）
	StartsAt         time.Time      `gorm:"index;not null" json:"starts_at"`  // 生效时间
	EndsAt           time.Time      `gorm:"index;not null" json:"ends_at"`    // 失效时间
	IsActive         bool           `gorm:"not null" json:"is_active"`        // 是否启用
	UsageLimit       *int64         `json:"usage_limit"`                      // 每用户可用次数（空为不限）
	MinOrderCents    *Money         `json:"min_order_cents"`                  // 最低下单金额（分）
	MaxDiscountCents *Money         `json:"max_discount_cents"`               // 单次折扣上限（分）
	CreatedAt        time.Time      `json:"created_at"`                       // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                       // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID        uint           `gorm:"index;not null" json:"user_id"`                 // 下单用户ID
	ShopID        uint           `gorm:"index;not null" json:"shop_id"`                 // 店铺ID
	PromotionID   *uint          `gorm:"index" json:"promotion_id"`                     // 应用的促销ID
	PromotionCode string         `json:"promotion_code"`                                // 下单时的促销码快照
	Status        string         `gorm:"index;not null" json:"status"`                  // 订单状态
	SubtotalCents Money          `gorm:"not null" json:"subtotal_cents"`                // 折前小计（分）
	DiscountCents Money          `gorm:"not null;default:0" json:"discount_cents"`      // 折扣金额（分）
	TotalCents    Money          `gorm:"not null" json:"total_cents"`                   // 应付总额（分）
	Notes         string         `gorm:"type:text" json:"notes"`                        // 订单备注
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                          // 支付时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单明细
	Shop  *Shop       `gorm:"foreignKey:ShopID" json:"shop,omitempty"`   // 店铺
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

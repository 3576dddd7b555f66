package models

import (
	"time"
)

// OrderItem 订单明细（下单时的菜品快照）
type OrderItem struct {
	ID             uint      `gorm:"primarykey" json:"id"`                // 主键
	OrderID        uint      `gorm:"index;not null" json:"order_id"`      // 订单ID
	ItemID         uint      `gorm:"index;not null" json:"item_id"`       // 菜品ID
	ItemName       string    `gorm:"not null" json:"item_name"`           // 菜品名称快照
	UnitPriceCents Money     `gorm:"not null" json:"unit_price_cents"`    // 含规格加价的单价快照（分）
	Quantity       int       `gorm:"not null" json:"quantity"`            // 数量
	Options        JSONArray `gorm:"type:json" json:"options"`            // 所选规格快照
	Notes          string    `gorm:"type:text" json:"notes"`              // 备注
	CreatedAt      time.Time `json:"created_at"`                          // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                          // 更新时间
}

// LineTotalCents 行小计
func (i OrderItem) LineTotalCents() Money {
	return Money(int64(i.UnitPriceCents) * int64(i.Quantity))
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

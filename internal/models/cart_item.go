package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车条目
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`              // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`     // 用户ID
	ItemID    uint           `gorm:"index;not null" json:"item_id"`     // 菜品ID
	Quantity  int            `gorm:"not null;default:1" json:"quantity"` // 数量
	OptionIDs JSONArray      `gorm:"type:json" json:"option_ids"`       // 所选规格项ID列表
	Notes     string         `gorm:"type:text" json:"notes"`            // 备注
	CreatedAt time.Time      `json:"created_at"`                        // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                        // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"` // 菜品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

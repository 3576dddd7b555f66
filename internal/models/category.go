package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 菜品分类
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`                 // 主键
	ShopID    uint           `gorm:"index;not null" json:"shop_id"`        // 所属店铺ID
	Name      string         `gorm:"not null" json:"name"`                 // 分类名称
	SortOrder int            `gorm:"not null;default:0" json:"sort_order"` // 排序值
	IsActive  bool           `gorm:"not null" json:"is_active"`            // 是否展示
	CreatedAt time.Time      `json:"created_at"`                           // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                           // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

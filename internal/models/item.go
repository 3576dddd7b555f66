package models

import (
	"time"

	"gorm.io/gorm"
)

// Item 菜品
type Item struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // 主键
	ShopID      uint           `gorm:"index;not null" json:"shop_id"`        // 所属店铺ID
	CategoryID  *uint          `gorm:"index" json:"category_id"`             // 所属分类ID
	Name        string         `gorm:"not null" json:"name"`                 // 菜品名称
	Description string         `gorm:"type:text" json:"description"`         // 菜品介绍
	PriceCents  Money          `gorm:"not null" json:"price_cents"`          // 单价（分）
	ImageURL    string         `gorm:"type:text" json:"image_url"`           // 菜品图片
	IsAvailable bool           `gorm:"not null" json:"is_available"`         // 是否可售
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"` // 排序值
	CreatedAt   time.Time      `json:"created_at"`                           // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                           // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间

	OptionGroups []ItemOptionGroup `gorm:"foreignKey:ItemID" json:"option_groups,omitempty"` // 规格组
}

// TableName 指定表名
func (Item) TableName() string {
	return "items"
}

// ItemOptionGroup 菜品规格组（如辣度、加料）
type ItemOptionGroup struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	ItemID    uint           `gorm:"index;not null" json:"item_id"`          // 所属菜品ID
	Name      string         `gorm:"not null" json:"name"`                   // 规格组名称
	Required  bool           `gorm:"not null;default:false" json:"required"` // 是否必选
	MaxSelect int            `gorm:"not null;default:1" json:"max_select"`   // 最多可选数量
	CreatedAt time.Time      `json:"created_at"`                             // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Options []ItemOption `gorm:"foreignKey:GroupID" json:"options,omitempty"` // 规格项
}

// TableName 指定表名
func (ItemOptionGroup) TableName() string {
	return "item_option_groups"
}

// ItemOption 规格项
type ItemOption struct {
	ID              uint           `gorm:"primarykey" json:"id"`                        // 主键
	GroupID         uint           `gorm:"index;not null" json:"group_id"`              // 所属规格组ID
	Name            string         `gorm:"not null" json:"name"`                        // 规格项名称
	PriceDeltaCents Money          `gorm:"not null;default:0" json:"price_delta_cents"` // 加价（分）
	IsAvailable     bool           `gorm:"not null" json:"is_available"`                // 是否可选
	CreatedAt       time.Time      `json:"created_at"`                                  // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                  // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (ItemOption) TableName() string {
	return "item_options"
}

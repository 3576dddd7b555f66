package models

import (
	"time"

	"gorm.io/gorm"
)

// Shop 店铺
type Shop struct {
	ID          uint           `gorm:"primarykey" json:"id"`           // 主键
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"` // 店主用户ID
	Name        string         `gorm:"not null" json:"name"`           // 店铺名称
	Description string         `gorm:"type:text" json:"description"`   // 店铺介绍
	Address     string         `json:"address"`                        // 地址
	Phone       string         `json:"phone"`                          // 联系电话
	ImageURL    string         `gorm:"type:text" json:"image_url"`     // 店铺图片
	IsActive    bool           `gorm:"not null" json:"is_active"`      // 是否营业
	CreatedAt   time.Time      `json:"created_at"`                     // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                 // 软删除时间

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"` // 店主
}

// TableName 指定表名
func (Shop) TableName() string {
	return "shops"
}

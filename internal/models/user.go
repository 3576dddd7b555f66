package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // 主键
	Name         string         `gorm:"not null" json:"name"`              // 显示名称
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // 登录邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                 // 密码哈希
	Phone        string         `json:"phone"`                             // 手机号
	Role         string         `gorm:"index;not null" json:"role"`        // 角色（customer/shop_owner/admin）
	IsActive     bool           `gorm:"not null" json:"is_active"`         // 是否启用
	CreatedAt    time.Time      `json:"created_at"`                        // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                        // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

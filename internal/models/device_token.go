package models

import (
	"time"
)

// DeviceToken 推送设备令牌
type DeviceToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`              // 主键
	UserID    uint      `gorm:"index;not null" json:"user_id"`     // 用户ID
	Token     string    `gorm:"uniqueIndex;not null" json:"token"` // FCM 设备令牌
	Platform  string    `gorm:"not null" json:"platform"`          // 平台（ios/android）
	CreatedAt time.Time `json:"created_at"`                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                        // 更新时间
}

// TableName 指定表名
func (DeviceToken) TableName() string {
	return "device_tokens"
}

package repository

import (
	"strings"

	"github.com/khornSaokhouch/server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository 设备令牌数据访问接口
type DeviceTokenRepository interface {
	Upsert(token *models.DeviceToken) error
	DeleteByToken(token string) error
	ListTokensByUser(userID uint) ([]string, error)
	WithTx(tx *gorm.DB) *GormDeviceTokenRepository
}

// GormDeviceTokenRepository GORM 实现
type GormDeviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository 创建设备令牌仓库
func NewDeviceTokenRepository(db *gorm.DB) *GormDeviceTokenRepository {
	return &GormDeviceTokenRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeviceTokenRepository) WithTx(tx *gorm.DB) *GormDeviceTokenRepository {
	if tx == nil {
		return r
	}
	return &GormDeviceTokenRepository{db: tx}
}

// Upsert 注册或更新设备令牌（同一 token 重新绑定到新用户/平台）
func (r *GormDeviceTokenRepository) Upsert(token *models.DeviceToken) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(token).Error
}

// DeleteByToken 删除设备令牌（推送返回无效令牌时清理）
func (r *GormDeviceTokenRepository) DeleteByToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return r.db.Where("token = ?", token).Delete(&models.DeviceToken{}).Error
}

// ListTokensByUser 获取用户全部设备令牌
func (r *GormDeviceTokenRepository) ListTokensByUser(userID uint) ([]string, error) {
	var tokens []string
	err := r.db.Model(&models.DeviceToken{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error
	return tokens, err
}

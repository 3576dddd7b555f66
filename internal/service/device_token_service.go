package service

import (
	"strings"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
)

// DeviceTokenService 推送令牌登记
type DeviceTokenService struct {
	tokenRepo repository.DeviceTokenRepository
}

// NewDeviceTokenService 创建设备令牌服务
func NewDeviceTokenService(tokenRepo repository.DeviceTokenRepository) *DeviceTokenService {
	return &DeviceTokenService{tokenRepo: tokenRepo}
}

// RegisterTokenInput 令牌登记输入
type RegisterTokenInput struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

// Register 登记或转移令牌归属。
// 同一令牌换账号登录时直接改归属，避免推错人。
func (s *DeviceTokenService) Register(userID uint, input RegisterTokenInput) (*models.DeviceToken, error) {
	token := strings.TrimSpace(input.Token)
	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if token == "" {
		return nil, ErrDeviceTokenInvalid
	}
	if platform != constants.DevicePlatformIOS && platform != constants.DevicePlatformAndroid {
		return nil, ErrDeviceTokenInvalid
	}

	deviceToken := &models.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
	}
	if err := s.tokenRepo.Upsert(deviceToken); err != nil {
		return nil, err
	}
	return deviceToken, nil
}

// Unregister 注销令牌（登出时调用）
func (s *DeviceTokenService) Unregister(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrDeviceTokenInvalid
	}
	return s.tokenRepo.DeleteByToken(token)
}

// TokensForUser 用户当前所有推送令牌
func (s *DeviceTokenService) TokensForUser(userID uint) ([]string, error) {
	return s.tokenRepo.ListTokensByUser(userID)
}

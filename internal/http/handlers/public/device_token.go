package public

import (
	"errors"

	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterDeviceToken 登记推送令牌
func (h *Handler) RegisterDeviceToken(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.RegisterTokenInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	token, err := h.DeviceTokenService.Register(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrDeviceTokenInvalid) {
			respondError(c, response.CodeBadRequest, "device token invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "register device token failed", err)
		return
	}
	response.Success(c, token)
}

// UnregisterDeviceTokenRequest 注销令牌请求
type UnregisterDeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UnregisterDeviceToken 注销推送令牌（登出时调用）
func (h *Handler) UnregisterDeviceToken(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	var req UnregisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.DeviceTokenService.Unregister(req.Token); err != nil {
		if errors.Is(err, service.ErrDeviceTokenInvalid) {
			respondError(c, response.CodeBadRequest, "device token invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "unregister device token failed", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

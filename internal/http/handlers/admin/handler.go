package admin

import "github.com/khornSaokhouch/server/internal/provider"

// Handler 商家/管理端 API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

package public

import (
	"io"
	"net/http"

	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// PayWayCallback ABA PayWay 异步回调入口。
// 网关对非 2xx 会重试，这里除读包失败外一律回 200；
// 真实状态由服务端主动查证决定，回调内容只作触发。
func (h *Handler) PayWayCallback(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("payway_callback_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "error"})
		return
	}
	log.Infow("payway_callback_received", "client_ip", c.ClientIP(), "body_size", len(body))

	result, err := h.PaymentService.HandleQRCallback(c.Request.Context(), body)
	if err != nil {
		log.Errorw("payway_callback_handle_failed", "error", err)
		// 内部失败也回 200，靠查证路径与过期任务收敛，避免网关风暴
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}
	if result == service.CallbackResultIgnored {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

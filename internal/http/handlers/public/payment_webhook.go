package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// StripeWebhook Stripe webhook 入口。
// 验签失败回 4xx 拒收；已识别并处理的事件回 200 停止重试。
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		c.String(http.StatusBadRequest, "read body failed")
		return
	}

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	if err := h.PaymentService.HandleStripeWebhook(c.Request.Context(), headers, body); err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureInvalid):
			log.Warnw("stripe_webhook_signature_invalid", "client_ip", c.ClientIP())
			c.String(http.StatusBadRequest, "signature verification failed")
		case errors.Is(err, service.ErrWebhookInvalid):
			log.Warnw("stripe_webhook_payload_invalid", "error", err)
			c.String(http.StatusBadRequest, "invalid payload")
		default:
			log.Errorw("stripe_webhook_handle_failed", "error", err)
			c.String(http.StatusInternalServerError, "webhook handling failed")
		}
		return
	}
	c.String(http.StatusOK, "ok")
}

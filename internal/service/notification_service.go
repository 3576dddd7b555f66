package service

import (
	"fmt"

	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/queue"
)

// NotificationService 把业务事件转成异步任务。
// 入队失败只记日志，不回滚业务。
type NotificationService struct {
	queue *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(queueClient *queue.Client) *NotificationService {
	return &NotificationService{queue: queueClient}
}

// NotifyOrderCreated 新订单通知店主
func (s *NotificationService) NotifyOrderCreated(order *models.Order) {
	if s.queue == nil || !s.queue.Enabled() {
		return
	}
	if err := s.queue.EnqueueNewOrderPush(queue.NewOrderPushPayload{
		OrderID: order.ID,
		ShopID:  order.ShopID,
	}); err != nil {
		logger.Errorw("enqueue_new_order_push_failed", "order_id", order.ID, "error", err)
	}
	if err := s.queue.EnqueueTelegramAlert(queue.TelegramAlertPayload{
		Text: fmt.Sprintf("🛎 New order #%d, total %s", order.ID, order.TotalCents.String()),
	}); err != nil {
		logger.Errorw("enqueue_telegram_alert_failed", "order_id", order.ID, "error", err)
	}
}

// NotifyOrderStatusChanged 订单状态变更推送顾客
func (s *NotificationService) NotifyOrderStatusChanged(order *models.Order) {
	if s.queue == nil || !s.queue.Enabled() {
		return
	}
	if err := s.queue.EnqueueOrderStatusPush(queue.OrderStatusPushPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
	}); err != nil {
		logger.Errorw("enqueue_order_status_push_failed", "order_id", order.ID, "error", err)
	}
}

// NotifyPaymentSucceeded 支付成功推送顾客并发运营告警
func (s *NotificationService) NotifyPaymentSucceeded(payment *models.Payment, order *models.Order) {
	if s.queue == nil || !s.queue.Enabled() {
		return
	}
	payload := queue.PaymentSuccessPushPayload{
		PaymentID: payment.ID,
		TranID:    payment.GatewayRef,
	}
	if payment.UserID != nil {
		payload.UserID = *payment.UserID
	}
	if payment.OrderID != nil {
		payload.OrderID = *payment.OrderID
	}
	if payment.AmountCents != nil {
		payload.Amount = payment.AmountCents.String()
	}
	if err := s.queue.EnqueuePaymentSuccessPush(payload); err != nil {
		logger.Errorw("enqueue_payment_success_push_failed", "payment_id", payment.ID, "error", err)
	}

	text := fmt.Sprintf("💰 Payment %s received (%s)", payload.Amount, payment.Gateway)
	if order != nil {
		text = fmt.Sprintf("💰 Payment %s received for order #%d (%s)", payload.Amount, order.ID, payment.Gateway)
	}
	if err := s.queue.EnqueueTelegramAlert(queue.TelegramAlertPayload{Text: text}); err != nil {
		logger.Errorw("enqueue_telegram_alert_failed", "payment_id", payment.ID, "error", err)
	}
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/khornSaokhouch/server/internal/alert"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/push"
	"github.com/khornSaokhouch/server/internal/queue"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/hibiken/asynq"
)

// Handlers 异步任务处理集合
type Handlers struct {
	pushSender *push.Sender // nil 表示推送未启用
	telegram   *alert.Telegram
	tokenRepo  repository.DeviceTokenRepository
	shopRepo   repository.ShopRepository
	paymentSvc *service.PaymentService
}

// NewHandlers 创建任务处理器
func NewHandlers(
	pushSender *push.Sender,
	telegram *alert.Telegram,
	tokenRepo repository.DeviceTokenRepository,
	shopRepo repository.ShopRepository,
	paymentSvc *service.PaymentService,
) *Handlers {
	return &Handlers{
		pushSender: pushSender,
		telegram:   telegram,
		tokenRepo:  tokenRepo,
		shopRepo:   shopRepo,
		paymentSvc: paymentSvc,
	}
}

// Register 注册所有任务类型
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskPaymentSuccessPush, h.HandlePaymentSuccessPush)
	mux.HandleFunc(queue.TaskOrderStatusPush, h.HandleOrderStatusPush)
	mux.HandleFunc(queue.TaskNewOrderPush, h.HandleNewOrderPush)
	mux.HandleFunc(queue.TaskTelegramAlert, h.HandleTelegramAlert)
	mux.HandleFunc(queue.TaskPaymentExpire, h.HandlePaymentExpire)
}

// HandlePaymentSuccessPush 支付成功推送顾客
func (h *Handlers) HandlePaymentSuccessPush(ctx context.Context, task *asynq.Task) error {
	var payload queue.PaymentSuccessPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}
	return h.pushToUser(ctx, payload.UserID, push.Message{
		Title: "Payment received",
		Body:  fmt.Sprintf("Your payment of %s for order #%d was successful.", payload.Amount, payload.OrderID),
		Data: map[string]string{
			"type":     "payment",
			"order_id": fmt.Sprintf("%d", payload.OrderID),
			"tran_id":  payload.TranID,
			"status":   "paid",
		},
	})
}

// HandleOrderStatusPush 订单状态变更推送顾客
func (h *Handlers) HandleOrderStatusPush(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderStatusPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}
	return h.pushToUser(ctx, payload.UserID, push.Message{
		Title: "Order update",
		Body:  fmt.Sprintf("Order #%d is now %s.", payload.OrderID, payload.Status),
		Data: map[string]string{
			"type":     "order_status",
			"order_id": fmt.Sprintf("%d", payload.OrderID),
			"status":   payload.Status,
		},
	})
}

// HandleNewOrderPush 新订单推送店主
func (h *Handlers) HandleNewOrderPush(ctx context.Context, task *asynq.Task) error {
	var payload queue.NewOrderPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}
	shop, err := h.shopRepo.GetByID(payload.ShopID)
	if err != nil {
		return err
	}
	if shop == nil {
		logger.Warnw("new_order_push_shop_missing", "shop_id", payload.ShopID)
		return nil
	}
	return h.pushToUser(ctx, shop.OwnerID, push.Message{
		Title: "New order",
		Body:  fmt.Sprintf("You have a new order #%d.", payload.OrderID),
		Data: map[string]string{
			"type":     "new_order",
			"order_id": fmt.Sprintf("%d", payload.OrderID),
			"shop_id":  fmt.Sprintf("%d", payload.ShopID),
		},
	})
}

// HandleTelegramAlert 运营告警
func (h *Handlers) HandleTelegramAlert(ctx context.Context, task *asynq.Task) error {
	var payload queue.TelegramAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}
	if h.telegram == nil {
		return nil
	}
	return h.telegram.Send(ctx, payload.Text)
}

// HandlePaymentExpire 支付超时兜底
func (h *Handlers) HandlePaymentExpire(_ context.Context, task *asynq.Task) error {
	var payload queue.PaymentExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("解析任务载荷失败: %w", err)
	}
	return h.paymentSvc.ExpirePayment(payload.PaymentID)
}

// pushToUser 推送用户全部设备，并清理失效令牌
func (h *Handlers) pushToUser(ctx context.Context, userID uint, message push.Message) error {
	if h.pushSender == nil {
		return nil
	}
	tokens, err := h.tokenRepo.ListTokensByUser(userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	result, err := h.pushSender.SendToTokens(ctx, tokens, message)
	if err != nil {
		return err
	}
	for _, token := range result.InvalidTokens {
		if err := h.tokenRepo.DeleteByToken(token); err != nil {
			logger.Warnw("prune_invalid_device_token_failed", "error", err)
		}
	}
	logger.Debugw("push_sent",
		"user_id", userID, "success", result.Success, "failure", result.Failure,
		"pruned", len(result.InvalidTokens))
	return nil
}

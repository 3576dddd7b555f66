package queue

import (
	"encoding/json"

	"github.com/khornSaokhouch/server/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentSuccessPush 支付成功推送任务
	TaskPaymentSuccessPush = constants.TaskTypePaymentSuccessPush
	// TaskOrderStatusPush 订单状态变更推送任务
	TaskOrderStatusPush = constants.TaskTypeOrderStatusPush
	// TaskNewOrderPush 新订单通知店主任务
	TaskNewOrderPush = constants.TaskTypeNewOrderPush
	// TaskTelegramAlert Telegram 告警任务
	TaskTelegramAlert = constants.TaskTypeTelegramAlert
	// TaskPaymentExpire 支付超时清理任务
	TaskPaymentExpire = constants.TaskTypePaymentExpire
)

// PaymentSuccessPushPayload 支付成功推送任务载荷
type PaymentSuccessPushPayload struct {
	PaymentID uint   `json:"payment_id"`
	OrderID   uint   `json:"order_id"`
	UserID    uint   `json:"user_id"`
	TranID    string `json:"tran_id"`
	Amount    string `json:"amount"`
}

// OrderStatusPushPayload 订单状态推送任务载荷
type OrderStatusPushPayload struct {
	OrderID uint   `json:"order_id"`
	UserID  uint   `json:"user_id"`
	Status  string `json:"status"`
}

// NewOrderPushPayload 新订单通知任务载荷
type NewOrderPushPayload struct {
	OrderID uint `json:"order_id"`
	ShopID  uint `json:"shop_id"`
}

// TelegramAlertPayload Telegram 告警任务载荷
type TelegramAlertPayload struct {
	Text string `json:"text"`
}

// PaymentExpirePayload 支付超时清理任务载荷
type PaymentExpirePayload struct {
	PaymentID uint `json:"payment_id"`
}

// NewPaymentSuccessPushTask 创建支付成功推送任务
func NewPaymentSuccessPushTask(payload PaymentSuccessPushPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentSuccessPush, body), nil
}

// NewOrderStatusPushTask 创建订单状态推送任务
func NewOrderStatusPushTask(payload OrderStatusPushPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusPush, body), nil
}

// NewNewOrderPushTask 创建新订单通知任务
func NewNewOrderPushTask(payload NewOrderPushPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNewOrderPush, body), nil
}

// NewTelegramAlertTask 创建 Telegram 告警任务
func NewTelegramAlertTask(payload TelegramAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTelegramAlert, body), nil
}

// NewPaymentExpireTask 创建支付超时清理任务
func NewPaymentExpireTask(payload PaymentExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentExpire, body), nil
}

package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
)

// 支付网关常量
const (
	PaymentGatewayPayWay = "payway"
	PaymentGatewayStripe = "stripe"
)

// 促销类型常量
const (
	PromotionTypePercent     = "percent"
	PromotionTypeFixedAmount = "fixedamount"
)

// 用户角色常量
const (
	UserRoleCustomer  = "customer"
	UserRoleShopOwner = "shop_owner"
	UserRoleAdmin     = "admin"
)

// 设备平台常量
const (
	DevicePlatformIOS     = "ios"
	DevicePlatformAndroid = "android"
)

// raw_response 各阶段记录键名
const (
	RawKeyTranID        = "aba_tran_id"
	RawKeyQRResponse    = "qr_response"
	RawKeyCallback      = "callback"
	RawKeyCheckResponse = "check_response"
	RawKeyIntent        = "intent_response"
	RawKeySession       = "session_response"
	RawKeyWebhook       = "webhook"
)

// 队列任务类型常量
const (
	TaskTypePaymentSuccessPush = "notify:payment_success_push"
	TaskTypeOrderStatusPush    = "notify:order_status_push"
	TaskTypeNewOrderPush       = "notify:new_order_push"
	TaskTypeTelegramAlert      = "notify:telegram_alert"
	TaskTypePaymentExpire      = "payment:expire"
)

// 上下文键常量
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

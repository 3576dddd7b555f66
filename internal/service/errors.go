package service

import "errors"

// 业务错误定义，handler 层据此映射响应码
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrCredentialsInvalid = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrPasswordTooWeak    = errors.New("password too weak")

	ErrShopNotFound     = errors.New("shop not found")
	ErrShopInactive     = errors.New("shop inactive")
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrItemUnavailable  = errors.New("item unavailable")
	ErrOptionInvalid    = errors.New("item option invalid")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrQuantityInvalid  = errors.New("quantity invalid")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderItemsRequired = errors.New("order items required")
	ErrOrderStatusInvalid = errors.New("order status transition not allowed")
	ErrPriceMismatch      = errors.New("client price differs from server price")
	ErrNotOrderOwner      = errors.New("not order owner")

	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrPromotionInactive     = errors.New("promotion inactive")
	ErrPromotionOutOfWindow  = errors.New("promotion out of validity window")
	ErrPromotionBelowMin     = errors.New("order below promotion minimum")
	ErrPromotionUsageLimit   = errors.New("promotion usage limit reached")
	ErrPromotionWindowWrong  = errors.New("promotion window invalid")
	ErrPromotionValueInvalid = errors.New("promotion value invalid")

	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentAmountInvalid  = errors.New("payment amount invalid")
	ErrPaymentStateConflict  = errors.New("payment already in terminal state")
	ErrGatewayDisabled       = errors.New("payment gateway disabled")
	ErrGatewayRequestFailed  = errors.New("payment gateway request failed")
	ErrWebhookInvalid        = errors.New("webhook payload invalid")
	ErrSignatureInvalid      = errors.New("signature verification failed")

	ErrDeviceTokenInvalid = errors.New("device token invalid")
)

package public

import (
	"errors"

	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderItemsRequired, code: response.CodeBadRequest, msg: "order items required"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "quantity invalid"},
	{target: service.ErrShopNotFound, code: response.CodeNotFound, msg: "shop not found"},
	{target: service.ErrShopInactive, code: response.CodeBadRequest, msg: "shop inactive"},
	{target: service.ErrItemNotFound, code: response.CodeBadRequest, msg: "item not found"},
	{target: service.ErrItemUnavailable, code: response.CodeBadRequest, msg: "item unavailable"},
	{target: service.ErrOptionInvalid, code: response.CodeBadRequest, msg: "item option invalid"},
	{target: service.ErrPriceMismatch, code: response.CodeUnprocessable, msg: "price changed, please refresh"},
	{target: service.ErrPromotionInactive, code: response.CodeUnprocessable, msg: "promotion inactive"},
	{target: service.ErrPromotionOutOfWindow, code: response.CodeUnprocessable, msg: "promotion not valid now"},
	{target: service.ErrPromotionBelowMin, code: response.CodeUnprocessable, msg: "order below promotion minimum"},
	{target: service.ErrPromotionUsageLimit, code: response.CodeUnprocessable, msg: "promotion usage limit reached"},
	{target: service.ErrPromotionValueInvalid, code: response.CodeUnprocessable, msg: "promotion invalid"},
	{target: service.ErrPromotionNotFound, code: response.CodeUnprocessable, msg: "promotion not found"},
}

var orderStatusErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrNotOrderOwner, code: response.CodeForbidden, msg: "not order owner"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeConflict, msg: "order status transition not allowed"},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrNotOrderOwner, code: response.CodeForbidden, msg: "not order owner"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeConflict, msg: "order is not payable"},
	{target: service.ErrPaymentAmountInvalid, code: response.CodeBadRequest, msg: "payment amount invalid"},
	{target: service.ErrGatewayDisabled, code: response.CodeBadRequest, msg: "payment gateway disabled"},
	{target: service.ErrGatewayRequestFailed, code: response.CodeBadRequest, msg: "payment gateway request failed"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment not found"},
	{target: service.ErrPaymentStateConflict, code: response.CodeConflict, msg: "payment already finalized"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrItemNotFound, code: response.CodeNotFound, msg: "item not found"},
	{target: service.ErrItemUnavailable, code: response.CodeBadRequest, msg: "item unavailable"},
	{target: service.ErrOptionInvalid, code: response.CodeBadRequest, msg: "item option invalid"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "quantity invalid"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order create failed")
}

func respondOrderStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderStatusErrorRules, response.CodeInternal, "order update failed")
}

func respondPaymentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "payment failed")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

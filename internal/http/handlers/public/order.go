package public

import (
	"errors"
	"io"
	"strconv"

	"github.com/khornSaokhouch/server/internal/constants"
	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrder 下单。金额一律按服务端菜单重算，
// 请求里的价格字段只用来校验客户端展示是否过期。
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	req.UserID = userID

	order, err := h.OrderService.PlaceOrder(req)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	requestLog(c).Infow("order_created",
		"order_id", order.ID, "user_id", userID, "shop_id", order.ShopID,
		"subtotal", order.SubtotalCents, "discount", order.DiscountCents, "total", order.TotalCents)
	response.Created(c, order)
}

// ListOrders 我的订单
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    userID,
		Status:    c.Query("status"),
		WithItems: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list orders failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page: page, PageSize: pageSize, Total: total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}
	order, err := h.OrderService.GetOrder(orderID, userID)
	if err != nil {
		respondOrderStatusError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单（仅 pending/paid 可取消）
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}
	// 先校验归属再流转
	if _, err := h.OrderService.GetOrder(orderID, userID); err != nil {
		respondOrderStatusError(c, err)
		return
	}
	order, err := h.OrderService.ChangeStatus(orderID, constants.OrderStatusCancelled)
	if err != nil {
		respondOrderStatusError(c, err)
		return
	}
	response.Success(c, order)
}

// CheckoutCartRequest 购物车结算请求
type CheckoutCartRequest struct {
	PromotionCode      string `json:"promotion_code"`
	Notes              string `json:"notes"`
	ExpectedTotalCents *int64 `json:"expected_total_cents"`
}

// CheckoutCart 将购物车内容落单，成功后清空购物车
func (h *Handler) CheckoutCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	cartItems, err := h.CartService.List(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "list cart failed", err)
		return
	}
	if len(cartItems) == 0 {
		respondError(c, response.CodeUnprocessable, "cart is empty", nil)
		return
	}

	input := service.PlaceOrderInput{
		UserID:             userID,
		PromotionCode:      req.PromotionCode,
		Notes:              req.Notes,
		ExpectedTotalCents: req.ExpectedTotalCents,
	}
	for _, cartItem := range cartItems {
		if cartItem.Item == nil {
			respondError(c, response.CodeUnprocessable, "cart item no longer available", nil)
			return
		}
		if input.ShopID == 0 {
			input.ShopID = cartItem.Item.ShopID
		}
		input.Items = append(input.Items, service.PlaceOrderItemInput{
			ItemID:    cartItem.ItemID,
			Quantity:  cartItem.Quantity,
			OptionIDs: uintsFromJSONArray(cartItem.OptionIDs),
			Notes:     cartItem.Notes,
		})
	}

	order, err := h.OrderService.PlaceOrder(input)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if err := h.CartService.Clear(userID); err != nil {
		requestLog(c).Warnw("clear_cart_after_checkout_failed", "user_id", userID, "error", err)
	}

	requestLog(c).Infow("cart_checkout",
		"order_id", order.ID, "user_id", userID, "shop_id", order.ShopID, "total", order.TotalCents)
	response.Created(c, order)
}

func uintsFromJSONArray(values models.JSONArray) []uint {
	ids := make([]uint, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case float64:
			ids = append(ids, uint(v))
		case int64:
			ids = append(ids, uint(v))
		case uint:
			ids = append(ids, v)
		}
	}
	return ids
}

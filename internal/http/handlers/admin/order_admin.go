package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// ListShopOrders 店铺订单列表
func (h *Handler) ListShopOrders(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	if _, ok := h.authorizedShop(c, shopID); !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		ShopID:    shopID,
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

// UpdateOrderStatusRequest 订单状态流转请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 店家推进订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.GetOrder(orderID, 0)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "load order failed", err)
		return
	}
	if _, ok := h.authorizedShop(c, order.ShopID); !ok {
		return
	}

	updated, err := h.OrderService.ChangeStatus(orderID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderStatusInvalid) {
			respondError(c, response.CodeConflict, "order status transition not allowed", nil)
			return
		}
		respondError(c, response.CodeInternal, "update order failed", err)
		return
	}
	requestLog(c).Infow("order_status_updated",
		"order_id", orderID, "status", updated.Status)
	response.Success(c, updated)
}

package public

import (
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCart 购物车明细
func (h *Handler) ListCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	items, err := h.CartService.List(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "load cart failed", err)
		return
	}
	response.Success(c, items)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req service.AddItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.CartService.AddItem(userID, req)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateCartItemRequest 购物车调量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem 调整购物车数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cartItemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "cart item id invalid", nil)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	item, err := h.CartService.UpdateQuantity(userID, cartItemID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	if item == nil {
		response.Success(c, gin.H{"removed": true})
		return
	}
	response.Success(c, item)
}

// RemoveCartItem 移出购物车
func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cartItemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "cart item id invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(userID, cartItemID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(userID); err != nil {
		respondError(c, response.CodeInternal, "clear cart failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

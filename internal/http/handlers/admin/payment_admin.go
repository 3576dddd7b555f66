package admin

import (
	"strconv"

	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListPayments 支付流水（仅管理员）
func (h *Handler) ListPayments(c *gin.Context) {
	if !isAdmin(c) {
		respondError(c, response.CodeForbidden, "admin only", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	payments, total, err := h.PaymentService.ListPayments(repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		OrderID:  uint(orderID),
		Gateway:  c.Query("gateway"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list payments failed", err)
		return
	}
	response.SuccessWithPage(c, payments, response.Pagination{
		Page: page, PageSize: pageSize, Total: total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

package public

import (
	"strings"

	"github.com/khornSaokhouch/server/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 发起支付请求
type CreatePaymentRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateQRPayment 发起 ABA PayWay KHQR 支付
func (h *Handler) CreateQRPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.PaymentService.CreateQRPayment(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	requestLog(c).Infow("qr_payment_created",
		"payment_id", result.Payment.ID, "order_id", req.OrderID, "tran_id", result.TranID)
	response.Created(c, result)
}

// GetQRPaymentStatus KHQR 支付状态查询
func (h *Handler) GetQRPaymentStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	tranID := strings.TrimSpace(c.Query("tran_id"))
	if tranID == "" {
		respondError(c, response.CodeBadRequest, "tran_id required", nil)
		return
	}
	payment, err := h.PaymentService.GetQRStatus(c.Request.Context(), userID, tranID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, payment)
}

// CreateStripeIntent 发起 Stripe PaymentIntent 支付
func (h *Handler) CreateStripeIntent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, err := h.PaymentService.CreatePaymentIntent(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Created(c, result)
}

// CreateStripeSession 发起 Stripe Checkout Session 支付
func (h *Handler) CreateStripeSession(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	result, err := h.PaymentService.CreateCheckoutSession(c.Request.Context(), userID, req.OrderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Created(c, result)
}

// GetPayment 支付详情
func (h *Handler) GetPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	paymentID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "payment id invalid", nil)
		return
	}
	payment, err := h.PaymentService.GetPayment(paymentID, userID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, payment)
}

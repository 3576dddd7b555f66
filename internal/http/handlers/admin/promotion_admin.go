package admin

import (
	"errors"
	"strconv"
	"time"

	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionRequest 促销写入请求
type PromotionRequest struct {
	ShopID           *uint     `json:"shop_id"` // 空表示全平台促销
	Code             string    `json:"code" binding:"required"`
	Name             string    `json:"name" binding:"required"`
	Type             string    `json:"type" binding:"required"`
	Value            int64     `json:"value" binding:"required"`
	StartsAt         time.Time `json:"starts_at" binding:"required"`
	EndsAt           time.Time `json:"ends_at" binding:"required"`
	IsActive         *bool     `json:"is_active"`
	UsageLimit       *int64    `json:"usage_limit"`
	MinOrderCents    *int64    `json:"min_order_cents"`
	MaxDiscountCents *int64    `json:"max_discount_cents"`
}

func (req *PromotionRequest) toModel() *models.Promotion {
	promotion := &models.Promotion{
		ShopID:     req.ShopID,
		Code:       req.Code,
		Name:       req.Name,
		Type:       req.Type,
		Value:      req.Value,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		IsActive:   true,
		UsageLimit: req.UsageLimit,
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}
	if req.MinOrderCents != nil {
		minOrder := models.Money(*req.MinOrderCents)
		promotion.MinOrderCents = &minOrder
	}
	if req.MaxDiscountCents != nil {
		maxDiscount := models.Money(*req.MaxDiscountCents)
		promotion.MaxDiscountCents = &maxDiscount
	}
	return promotion
}

func respondPromotionWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromotionWindowWrong):
		respondError(c, response.CodeBadRequest, "ends_at must be after starts_at", nil)
	case errors.Is(err, service.ErrPromotionValueInvalid):
		respondError(c, response.CodeBadRequest, "promotion type or value invalid", nil)
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "promotion not found", nil)
	default:
		respondError(c, response.CodeInternal, "save promotion failed", err)
	}
}

// CreatePromotion 创建促销
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.ShopID != nil {
		if _, ok := h.authorizedShop(c, *req.ShopID); !ok {
			return
		}
	} else if !isAdmin(c) {
		respondError(c, response.CodeForbidden, "platform promotion requires admin", nil)
		return
	}

	promotion := req.toModel()
	if err := h.PromotionAdminService.CreatePromotion(promotion); err != nil {
		respondPromotionWriteError(c, err)
		return
	}
	response.Created(c, promotion)
}

// UpdatePromotion 更新促销
func (h *Handler) UpdatePromotion(c *gin.Context) {
	promotionID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "promotion id invalid", nil)
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	existing, err := h.PromotionAdminService.GetPromotion(promotionID)
	if err != nil {
		respondPromotionWriteError(c, err)
		return
	}
	if existing.ShopID != nil {
		if _, ok := h.authorizedShop(c, *existing.ShopID); !ok {
			return
		}
	} else if !isAdmin(c) {
		respondError(c, response.CodeForbidden, "platform promotion requires admin", nil)
		return
	}

	promotion := req.toModel()
	promotion.ID = promotionID
	if err := h.PromotionAdminService.UpdatePromotion(promotion); err != nil {
		respondPromotionWriteError(c, err)
		return
	}
	response.Success(c, promotion)
}

// DeletePromotion 删除促销
func (h *Handler) DeletePromotion(c *gin.Context) {
	promotionID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "promotion id invalid", nil)
		return
	}
	existing, err := h.PromotionAdminService.GetPromotion(promotionID)
	if err != nil {
		respondPromotionWriteError(c, err)
		return
	}
	if existing.ShopID != nil {
		if _, ok := h.authorizedShop(c, *existing.ShopID); !ok {
			return
		}
	} else if !isAdmin(c) {
		respondError(c, response.CodeForbidden, "platform promotion requires admin", nil)
		return
	}
	if err := h.PromotionAdminService.DeletePromotion(promotionID); err != nil {
		respondError(c, response.CodeInternal, "delete promotion failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ListPromotions 促销列表
func (h *Handler) ListPromotions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	shopID, _ := strconv.ParseUint(c.Query("shop_id"), 10, 64)

	promotions, total, err := h.PromotionAdminService.ListPromotions(repository.PromotionListFilter{
		Page:     page,
		PageSize: pageSize,
		ShopID:   uint(shopID),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list promotions failed", err)
		return
	}
	response.SuccessWithPage(c, promotions, response.Pagination{
		Page: page, PageSize: pageSize, Total: total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

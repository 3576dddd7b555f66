package public

import (
	"errors"
	"strconv"

	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// ListShops 店铺列表（仅营业中）
func (h *Handler) ListShops(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	shops, total, err := h.CatalogService.ListShops(repository.ShopListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list shops failed", err)
		return
	}
	response.SuccessWithPage(c, shops, response.Pagination{
		Page: page, PageSize: pageSize, Total: total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetShop 店铺详情
func (h *Handler) GetShop(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	shop, err := h.CatalogService.GetShop(shopID)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			respondError(c, response.CodeNotFound, "shop not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "load shop failed", err)
		return
	}
	response.Success(c, shop)
}

// ListCategories 店铺分类
func (h *Handler) ListCategories(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	categories, err := h.CatalogService.ListCategories(shopID, true)
	if err != nil {
		respondError(c, response.CodeInternal, "list categories failed", err)
		return
	}
	response.Success(c, categories)
}

// ListItems 店铺菜单
func (h *Handler) ListItems(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)

	items, total, err := h.CatalogService.ListItems(repository.ItemListFilter{
		Page:          page,
		PageSize:      pageSize,
		ShopID:        shopID,
		CategoryID:    uint(categoryID),
		Search:        c.Query("search"),
		OnlyAvailable: true,
		WithOptions:   true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list items failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page: page, PageSize: pageSize, Total: total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetItem 菜品详情（含选项）
func (h *Handler) GetItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}
	item, err := h.CatalogService.GetItem(itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondError(c, response.CodeNotFound, "item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "load item failed", err)
		return
	}
	response.Success(c, item)
}

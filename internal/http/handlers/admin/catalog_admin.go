package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/khornSaokhouch/server/internal/http/handlers/shared"
	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// authorizedShop 校验店铺存在且归当前账号管理，管理员不受限。
func (h *Handler) authorizedShop(c *gin.Context, shopID uint) (*models.Shop, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return nil, false
	}
	shop, err := h.CatalogService.GetShop(shopID)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			respondError(c, response.CodeNotFound, "shop not found", nil)
			return nil, false
		}
		respondError(c, response.CodeInternal, "load shop failed", err)
		return nil, false
	}
	if !isAdmin(c) && shop.OwnerID != userID {
		respondError(c, response.CodeForbidden, "not shop owner", nil)
		return nil, false
	}
	return shop, true
}

// ShopRequest 店铺写入请求
type ShopRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// CreateShop 创建店铺（归属当前账号）
func (h *Handler) CreateShop(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	shop := &models.Shop{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		ImageURL:    req.ImageURL,
	}
	if err := h.CatalogService.CreateShop(shop); err != nil {
		respondError(c, response.CodeInternal, "create shop failed", err)
		return
	}
	response.Created(c, shop)
}

// UpdateShop 更新店铺
func (h *Handler) UpdateShop(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	shop, ok := h.authorizedShop(c, shopID)
	if !ok {
		return
	}
	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	shop.Name = req.Name
	shop.Description = req.Description
	shop.Address = req.Address
	shop.Phone = req.Phone
	shop.ImageURL = req.ImageURL
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}
	if err := h.CatalogService.UpdateShop(shop); err != nil {
		respondError(c, response.CodeInternal, "update shop failed", err)
		return
	}
	response.Success(c, shop)
}

// ListMyShops 当前账号的店铺列表（管理员看全部）
func (h *Handler) ListMyShops(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.ShopListFilter{Page: page, PageSize: pageSize, Search: c.Query("search")}
	if !isAdmin(c) {
		filter.OwnerID = userID
	}
	shops, total, err := h.CatalogService.ListShops(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "list shops failed", err)
		return
	}
	response.SuccessWithPage(c, shops, response.Pagination{
		Page: page, PageSize: pageSize, Total: total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// CategoryRequest 分类写入请求
type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	if _, ok := h.authorizedShop(c, shopID); !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category := &models.Category{
		ShopID:    shopID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := h.CatalogService.CreateCategory(category); err != nil {
		respondError(c, response.CodeInternal, "create category failed", err)
		return
	}
	response.Created(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "category id invalid", nil)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category, err := h.CategoryRepo.GetByID(categoryID)
	if err != nil {
		respondError(c, response.CodeInternal, "load category failed", err)
		return
	}
	if category == nil {
		respondError(c, response.CodeNotFound, "category not found", nil)
		return
	}
	if _, ok := h.authorizedShop(c, category.ShopID); !ok {
		return
	}
	category.Name = req.Name
	category.SortOrder = req.SortOrder
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := h.CatalogService.UpdateCategory(category); err != nil {
		respondError(c, response.CodeInternal, "update category failed", err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "category id invalid", nil)
		return
	}
	category, err := h.CategoryRepo.GetByID(categoryID)
	if err != nil {
		respondError(c, response.CodeInternal, "load category failed", err)
		return
	}
	if category == nil {
		respondError(c, response.CodeNotFound, "category not found", nil)
		return
	}
	if _, ok := h.authorizedShop(c, category.ShopID); !ok {
		return
	}
	if err := h.CatalogService.DeleteCategory(categoryID); err != nil {
		respondError(c, response.CodeInternal, "delete category failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

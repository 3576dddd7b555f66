package admin

import (
	"errors"

	"github.com/khornSaokhouch/server/internal/http/response"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/service"

	"github.com/gin-gonic/gin"
)

// ItemRequest 菜品写入请求，价格以分为单位传输
type ItemRequest struct {
	CategoryID  *uint  `json:"category_id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required"`
	ImageURL    string `json:"image_url"`
	IsAvailable *bool  `json:"is_available"`
	SortOrder   int    `json:"sort_order"`
}

// CreateItem 创建菜品
func (h *Handler) CreateItem(c *gin.Context) {
	shopID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "shop id invalid", nil)
		return
	}
	if _, ok := h.authorizedShop(c, shopID); !ok {
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.PriceCents <= 0 {
		respondError(c, response.CodeBadRequest, "price must be positive", nil)
		return
	}

	item := &models.Item{
		ShopID:      shopID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  models.Money(req.PriceCents),
		ImageURL:    req.ImageURL,
		IsAvailable: true,
		SortOrder:   req.SortOrder,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := h.CatalogService.CreateItem(item); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, response.CodeBadRequest, "category not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "create item failed", err)
		return
	}
	response.Created(c, item)
}

// loadOwnedItem 读取菜品并校验店铺归属
func (h *Handler) loadOwnedItem(c *gin.Context, itemID uint) (*models.Item, bool) {
	item, err := h.ItemRepo.GetByID(itemID)
	if err != nil {
		respondError(c, response.CodeInternal, "load item failed", err)
		return nil, false
	}
	if item == nil {
		respondError(c, response.CodeNotFound, "item not found", nil)
		return nil, false
	}
	if _, ok := h.authorizedShop(c, item.ShopID); !ok {
		return nil, false
	}
	return item, true
}

// UpdateItem 更新菜品
func (h *Handler) UpdateItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}
	item, ok := h.loadOwnedItem(c, itemID)
	if !ok {
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if req.PriceCents <= 0 {
		respondError(c, response.CodeBadRequest, "price must be positive", nil)
		return
	}

	item.CategoryID = req.CategoryID
	item.Name = req.Name
	item.Description = req.Description
	item.PriceCents = models.Money(req.PriceCents)
	item.ImageURL = req.ImageURL
	item.SortOrder = req.SortOrder
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if err := h.CatalogService.UpdateItem(item); err != nil {
		respondError(c, response.CodeInternal, "update item failed", err)
		return
	}
	response.Success(c, item)
}

// DeleteItem 删除菜品
func (h *Handler) DeleteItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}
	if _, ok := h.loadOwnedItem(c, itemID); !ok {
		return
	}
	if err := h.CatalogService.DeleteItem(itemID); err != nil {
		respondError(c, response.CodeInternal, "delete item failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// OptionGroupRequest 选项组写入请求
type OptionGroupRequest struct {
	Name      string `json:"name" binding:"required"`
	Required  bool   `json:"required"`
	MaxSelect int    `json:"max_select"`
}

// CreateOptionGroup 创建选项组
func (h *Handler) CreateOptionGroup(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "item id invalid", nil)
		return
	}
	if _, ok := h.loadOwnedItem(c, itemID); !ok {
		return
	}
	var req OptionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	group := &models.ItemOptionGroup{
		ItemID:    itemID,
		Name:      req.Name,
		Required:  req.Required,
		MaxSelect: req.MaxSelect,
	}
	if err := h.CatalogService.CreateOptionGroup(group); err != nil {
		respondError(c, response.CodeInternal, "create option group failed", err)
		return
	}
	response.Created(c, group)
}

// DeleteOptionGroup 删除选项组及其选项
func (h *Handler) DeleteOptionGroup(c *gin.Context) {
	groupID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "group id invalid", nil)
		return
	}
	if err := h.CatalogService.DeleteOptionGroup(groupID); err != nil {
		respondError(c, response.CodeInternal, "delete option group failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// OptionRequest 选项写入请求
type OptionRequest struct {
	GroupID         uint   `json:"group_id" binding:"required"`
	Name            string `json:"name" binding:"required"`
	PriceDeltaCents int64  `json:"price_delta_cents"`
	IsAvailable     *bool  `json:"is_available"`
}

// CreateOption 创建选项
func (h *Handler) CreateOption(c *gin.Context) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	option := &models.ItemOption{
		GroupID:         req.GroupID,
		Name:            req.Name,
		PriceDeltaCents: models.Money(req.PriceDeltaCents),
		IsAvailable:     true,
	}
	if req.IsAvailable != nil {
		option.IsAvailable = *req.IsAvailable
	}
	if err := h.CatalogService.CreateOption(option); err != nil {
		respondError(c, response.CodeInternal, "create option failed", err)
		return
	}
	response.Created(c, option)
}

// DeleteOption 删除选项
func (h *Handler) DeleteOption(c *gin.Context) {
	optionID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "option id invalid", nil)
		return
	}
	if err := h.CatalogService.DeleteOption(optionID); err != nil {
		respondError(c, response.CodeInternal, "delete option failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

package service

import (
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"
)

// CartService 购物车维护
type CartService struct {
	cartRepo repository.CartRepository
	itemRepo repository.ItemRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, itemRepo repository.ItemRepository) *CartService {
	return &CartService{cartRepo: cartRepo, itemRepo: itemRepo}
}

// AddItemInput 加购输入
type AddItemInput struct {
	ItemID    uint   `json:"item_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	OptionIDs []uint `json:"option_ids"`
	Notes     string `json:"notes"`
}

// AddItem 加入购物车
func (s *CartService) AddItem(userID uint, input AddItemInput) (*models.CartItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrQuantityInvalid
	}
	item, err := s.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsAvailable {
		return nil, ErrItemUnavailable
	}
	if len(input.OptionIDs) > 0 {
		options, err := s.itemRepo.GetOptionsByIDs(input.OptionIDs)
		if err != nil {
			return nil, err
		}
		if len(options) != len(input.OptionIDs) {
			return nil, ErrOptionInvalid
		}
	}

	optionIDs := make(models.JSONArray, 0, len(input.OptionIDs))
	for _, id := range input.OptionIDs {
		optionIDs = append(optionIDs, id)
	}
	cartItem := &models.CartItem{
		UserID:    userID,
		ItemID:    input.ItemID,
		Quantity:  input.Quantity,
		OptionIDs: optionIDs,
		Notes:     input.Notes,
	}
	if err := s.cartRepo.Create(cartItem); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByID(cartItem.ID)
}

// UpdateQuantity 调整数量，0 视为删除
func (s *CartService) UpdateQuantity(userID, cartItemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, ErrQuantityInvalid
	}
	cartItem, err := s.ownedCartItem(userID, cartItemID)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, s.cartRepo.Delete(cartItem.ID)
	}
	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		return nil, err
	}
	return cartItem, nil
}

// RemoveItem 移出购物车
func (s *CartService) RemoveItem(userID, cartItemID uint) error {
	cartItem, err := s.ownedCartItem(userID, cartItemID)
	if err != nil {
		return err
	}
	return s.cartRepo.Delete(cartItem.ID)
}

// List 购物车明细
func (s *CartService) List(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}

func (s *CartService) ownedCartItem(userID, cartItemID uint) (*models.CartItem, error) {
	cartItem, err := s.cartRepo.GetByID(cartItemID)
	if err != nil {
		return nil, err
	}
	if cartItem == nil || cartItem.UserID != userID {
		return nil, ErrCartItemNotFound
	}
	return cartItem, nil
}

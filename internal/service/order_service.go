package service

import (
	"fmt"
	"time"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"

	"gorm.io/gorm"
)

// OrderNotifier 订单事件通知出口
type OrderNotifier interface {
	NotifyOrderCreated(order *models.Order)
	NotifyOrderStatusChanged(order *models.Order)
}

// OrderService 订单定价与下单
type OrderService struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	itemRepo      repository.ItemRepository
	shopRepo      repository.ShopRepository
	promotionRepo repository.PromotionRepository
	promotionSvc  *PromotionService
	notifier      OrderNotifier
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	shopRepo repository.ShopRepository,
	promotionRepo repository.PromotionRepository,
	promotionSvc *PromotionService,
	notifier OrderNotifier,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		shopRepo:      shopRepo,
		promotionRepo: promotionRepo,
		promotionSvc:  promotionSvc,
		notifier:      notifier,
	}
}

// PlaceOrderItemInput 下单条目输入
type PlaceOrderItemInput struct {
	ItemID                 uint   `json:"item_id" binding:"required"`
	Quantity               int    `json:"quantity" binding:"required"`
	OptionIDs              []uint `json:"option_ids"`
	Notes                  string `json:"notes"`
	ExpectedUnitPriceCents *int64 `json:"expected_unit_price_cents"` // 客户端展示单价，用于与服务端重算比对
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	UserID             uint
	ShopID             uint                  `json:"shop_id" binding:"required"`
	PromotionCode      string                `json:"promotion_code"`
	Notes              string                `json:"notes"`
	ExpectedTotalCents *int64                `json:"expected_total_cents"`
	Items              []PlaceOrderItemInput `json:"items" binding:"required"`
}

// PlaceOrder 服务端重算定价并原子落单。
// 客户端价格只作比对，不作输入；促销评估与订单创建在同一事务内，
// 促销行加锁避免并发下超限核销。
func (s *OrderService) PlaceOrder(input PlaceOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsRequired
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
	}

	shop, err := s.shopRepo.GetByID(input.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if !shop.IsActive {
		return nil, ErrShopInactive
	}

	orderItems, subtotal, err := s.priceItems(input.ShopID, input.Items)
	if err != nil {
		return nil, err
	}

	promo, err := s.promotionSvc.Resolve(input.PromotionCode)
	if err != nil {
		return nil, err
	}
	if input.PromotionCode != "" && promo == nil {
		// 码不存在按未用促销处理，记录以便排查输入错误
		logger.Debugw("promotion_code_not_found", "code", input.PromotionCode)
	}

	now := time.Now()
	order := &models.Order{
		UserID:        input.UserID,
		ShopID:        input.ShopID,
		Status:        constants.OrderStatusPending,
		SubtotalCents: subtotal,
		Notes:         input.Notes,
		Items:         orderItems,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		promoRepo := s.promotionRepo.WithTx(tx)

		var discount models.Money
		if promo != nil {
			// 行锁串行化同一促销的并发下单
			locked, err := promoRepo.GetByIDForUpdate(promo.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				return ErrPromotionNotFound
			}
			discount, err = EvaluatePromotion(locked, subtotal, input.UserID, now, promoRepo.CountRedemptionsByUser)
			if err != nil {
				return err
			}
			order.PromotionID = &locked.ID
			order.PromotionCode = locked.Code
		}

		order.DiscountCents = discount
		order.TotalCents = subtotal - discount

		if input.ExpectedTotalCents != nil && *input.ExpectedTotalCents != order.TotalCents.Cents() {
			return fmt.Errorf("%w: total %d != %d", ErrPriceMismatch, *input.ExpectedTotalCents, order.TotalCents.Cents())
		}

		return s.orderRepo.WithTx(tx).Create(order)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(order)
	}

	return s.orderRepo.GetByIDWithItems(order.ID)
}

// priceItems 依照菜单重算每行单价与小计
func (s *OrderService) priceItems(shopID uint, inputs []PlaceOrderItemInput) ([]models.OrderItem, models.Money, error) {
	itemIDs := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		itemIDs = append(itemIDs, in.ItemID)
	}
	items, err := s.itemRepo.GetByIDs(itemIDs)
	if err != nil {
		return nil, 0, err
	}
	itemByID := make(map[uint]models.Item, len(items))
	for _, item := range items {
		itemByID[item.ID] = item
	}

	var optionIDs []uint
	for _, in := range inputs {
		optionIDs = append(optionIDs, in.OptionIDs...)
	}
	options, err := s.itemRepo.GetOptionsByIDs(optionIDs)
	if err != nil {
		return nil, 0, err
	}
	optionByID := make(map[uint]models.ItemOption, len(options))
	for _, option := range options {
		optionByID[option.ID] = option
	}

	var subtotal models.Money
	orderItems := make([]models.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		item, ok := itemByID[in.ItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: item %d", ErrItemNotFound, in.ItemID)
		}
		if item.ShopID != shopID {
			return nil, 0, fmt.Errorf("%w: item %d not in shop %d", ErrItemNotFound, in.ItemID, shopID)
		}
		if !item.IsAvailable {
			return nil, 0, fmt.Errorf("%w: item %d", ErrItemUnavailable, in.ItemID)
		}

		unitPrice := item.PriceCents
		optionSnapshots := make(models.JSONArray, 0, len(in.OptionIDs))
		for _, optionID := range in.OptionIDs {
			option, ok := optionByID[optionID]
			if !ok || !option.IsAvailable {
				return nil, 0, fmt.Errorf("%w: option %d", ErrOptionInvalid, optionID)
			}
			unitPrice += option.PriceDeltaCents
			optionSnapshots = append(optionSnapshots, map[string]interface{}{
				"option_id":         option.ID,
				"name":              option.Name,
				"price_delta_cents": option.PriceDeltaCents.Cents(),
			})
		}

		if in.ExpectedUnitPriceCents != nil && *in.ExpectedUnitPriceCents != unitPrice.Cents() {
			return nil, 0, fmt.Errorf("%w: item %d unit %d != %d",
				ErrPriceMismatch, in.ItemID, *in.ExpectedUnitPriceCents, unitPrice.Cents())
		}

		subtotal += models.Money(int64(unitPrice) * int64(in.Quantity))
		orderItems = append(orderItems, models.OrderItem{
			ItemID:         item.ID,
			ItemName:       item.Name,
			UnitPriceCents: unitPrice,
			Quantity:       in.Quantity,
			Options:        optionSnapshots,
			Notes:          in.Notes,
		})
	}
	return orderItems, subtotal, nil
}

// GetOrder 获取订单（校验归属）
func (s *OrderService) GetOrder(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDWithItems(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if userID != 0 && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// ChangeStatus 推进订单状态（商家/管理端操作）
func (s *OrderService) ChangeStatus(orderID uint, to string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isOrderTransitionAllowed(order.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, to)
	}

	applied, err := s.orderRepo.UpdateStatus(orderID, order.Status, to, nil)
	if err != nil {
		return nil, err
	}
	if !applied {
		// 并发下被其他请求先行流转
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, to)
	}

	order.Status = to
	if s.notifier != nil {
		s.notifier.NotifyOrderStatusChanged(order)
	}
	return order, nil
}

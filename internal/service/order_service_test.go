package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	created       int
	statusChanged int
	paid          int
}

func (n *recordingNotifier) NotifyOrderCreated(_ *models.Order)       { n.created++ }
func (n *recordingNotifier) NotifyOrderStatusChanged(_ *models.Order) { n.statusChanged++ }
func (n *recordingNotifier) NotifyPaymentSucceeded(_ *models.Payment, _ *models.Order) {
	n.paid++
}

type orderTestEnv struct {
	db       *gorm.DB
	svc      *OrderService
	notifier *recordingNotifier
	shop     *models.Shop
	user     *models.User
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:order_svc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Shop{}, &models.Category{}, &models.Item{},
		&models.ItemOptionGroup{}, &models.ItemOption{},
		&models.Order{}, &models.OrderItem{}, &models.Promotion{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	user := &models.User{Name: "tester", Email: "tester@example.com", Role: constants.UserRoleCustomer, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	shop := &models.Shop{OwnerID: user.ID, Name: "Noodle House", IsActive: true}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("创建测试店铺失败: %v", err)
	}

	notifier := &recordingNotifier{}
	promotionRepo := repository.NewPromotionRepository(db)
	svc := NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewItemRepository(db),
		repository.NewShopRepository(db),
		promotionRepo,
		NewPromotionService(promotionRepo),
		notifier,
	)
	return &orderTestEnv{db: db, svc: svc, notifier: notifier, shop: shop, user: user}
}

func (env *orderTestEnv) createItem(t *testing.T, name string, price models.Money) *models.Item {
	t.Helper()
	item := &models.Item{ShopID: env.shop.ID, Name: name, PriceCents: price, IsAvailable: true}
	if err := env.db.Create(item).Error; err != nil {
		t.Fatalf("创建测试菜品失败: %v", err)
	}
	return item
}

func (env *orderTestEnv) createOption(t *testing.T, itemID uint, name string, delta models.Money) *models.ItemOption {
	t.Helper()
	group := &models.ItemOptionGroup{ItemID: itemID, Name: "加料", MaxSelect: 3}
	if err := env.db.Create(group).Error; err != nil {
		t.Fatalf("创建测试选项组失败: %v", err)
	}
	option := &models.ItemOption{GroupID: group.ID, Name: name, PriceDeltaCents: delta, IsAvailable: true}
	if err := env.db.Create(option).Error; err != nil {
		t.Fatalf("创建测试选项失败: %v", err)
	}
	return option
}

func TestPlaceOrderRepricesFromCatalog(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Beef Noodle", 450)
	option := env.createOption(t, item.ID, "Extra Beef", 150)

	order, err := env.svc.PlaceOrder(PlaceOrderInput{
		UserID: env.user.ID,
		ShopID: env.shop.ID,
		Items: []PlaceOrderItemInput{
			{ItemID: item.ID, Quantity: 2, OptionIDs: []uint{option.ID}},
		},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	if order.SubtotalCents != 1200 {
		t.Fatalf("小计 = %d, 期望 1200", order.SubtotalCents)
	}
	if order.TotalCents != 1200 || order.DiscountCents != 0 {
		t.Fatalf("总额 = %d / 折扣 = %d, 期望 1200 / 0", order.TotalCents, order.DiscountCents)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("状态 = %s, 期望 pending", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPriceCents != 600 {
		t.Fatalf("订单行单价快照错误: %+v", order.Items)
	}
	if env.notifier.created != 1 {
		t.Fatalf("新订单通知次数 = %d, 期望 1", env.notifier.created)
	}
}

func TestPlaceOrderPercentPromotion(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Set A", 1000)

	promo := &models.Promotion{
		Code: "TEN", Name: "10% off", Type: constants.PromotionTypePercent, Value: 10,
		StartsAt: time.Now().Add(-time.Hour), EndsAt: time.Now().Add(time.Hour), IsActive: true,
	}
	if err := env.db.Create(promo).Error; err != nil {
		t.Fatalf("创建测试促销失败: %v", err)
	}

	order, err := env.svc.PlaceOrder(PlaceOrderInput{
		UserID:        env.user.ID,
		ShopID:        env.shop.ID,
		PromotionCode: "TEN",
		Items:         []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	if order.DiscountCents != 100 || order.TotalCents != 900 {
		t.Fatalf("折扣 = %d / 总额 = %d, 期望 100 / 900", order.DiscountCents, order.TotalCents)
	}
	if order.PromotionID == nil || *order.PromotionID != promo.ID || order.PromotionCode != "TEN" {
		t.Fatalf("促销快照错误: %+v", order)
	}
}

func TestPlaceOrderFixedPromotionClampedToSubtotal(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Snack", 500)

	promo := &models.Promotion{
		Code: "BIG", Name: "8 off", Type: constants.PromotionTypeFixedAmount, Value: 800,
		StartsAt: time.Now().Add(-time.Hour), EndsAt: time.Now().Add(time.Hour), IsActive: true,
	}
	if err := env.db.Create(promo).Error; err != nil {
		t.Fatalf("创建测试促销失败: %v", err)
	}

	order, err := env.svc.PlaceOrder(PlaceOrderInput{
		UserID:        env.user.ID,
		ShopID:        env.shop.ID,
		PromotionCode: "BIG",
		Items:         []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}
	if order.DiscountCents != 500 || order.TotalCents != 0 {
		t.Fatalf("折扣 = %d / 总额 = %d, 期望 500 / 0", order.DiscountCents, order.TotalCents)
	}
}

func TestPlaceOrderUsageLimitRejectsWithoutRow(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Set B", 1000)

	limit := int64(1)
	promo := &models.Promotion{
		Code: "ONCE", Name: "once", Type: constants.PromotionTypePercent, Value: 10,
		StartsAt: time.Now().Add(-time.Hour), EndsAt: time.Now().Add(time.Hour),
		IsActive: true, UsageLimit: &limit,
	}
	if err := env.db.Create(promo).Error; err != nil {
		t.Fatalf("创建测试促销失败: %v", err)
	}

	input := PlaceOrderInput{
		UserID:        env.user.ID,
		ShopID:        env.shop.ID,
		PromotionCode: "ONCE",
		Items:         []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1}},
	}
	if _, err := env.svc.PlaceOrder(input); err != nil {
		t.Fatalf("首单应当成功: %v", err)
	}
	if _, err := env.svc.PlaceOrder(input); !errors.Is(err, ErrPromotionUsageLimit) {
		t.Fatalf("err = %v, 期望 ErrPromotionUsageLimit", err)
	}

	var count int64
	if err := env.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("统计订单失败: %v", err)
	}
	if count != 1 {
		t.Fatalf("被拒下单不应写入订单, 现有 %d 单", count)
	}
}

func TestPlaceOrderPriceMismatch(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Set C", 700)

	wrongUnit := int64(650)
	_, err := env.svc.PlaceOrder(PlaceOrderInput{
		UserID: env.user.ID,
		ShopID: env.shop.ID,
		Items:  []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1, ExpectedUnitPriceCents: &wrongUnit}},
	})
	if !errors.Is(err, ErrPriceMismatch) {
		t.Fatalf("err = %v, 期望 ErrPriceMismatch", err)
	}

	wrongTotal := int64(650)
	_, err = env.svc.PlaceOrder(PlaceOrderInput{
		UserID:             env.user.ID,
		ShopID:             env.shop.ID,
		ExpectedTotalCents: &wrongTotal,
		Items:              []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrPriceMismatch) {
		t.Fatalf("err = %v, 期望 ErrPriceMismatch", err)
	}
}

func TestPlaceOrderUnavailableItem(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Sold Out", 300)
	if err := env.db.Model(item).Update("is_available", false).Error; err != nil {
		t.Fatalf("下架测试菜品失败: %v", err)
	}

	_, err := env.svc.PlaceOrder(PlaceOrderInput{
		UserID: env.user.ID,
		ShopID: env.shop.ID,
		Items:  []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrItemUnavailable) {
		t.Fatalf("err = %v, 期望 ErrItemUnavailable", err)
	}
}

func TestChangeStatusFollowsTransitionTable(t *testing.T) {
	env := setupOrderServiceTest(t)
	item := env.createItem(t, "Set D", 400)

	order, err := env.svc.PlaceOrder(PlaceOrderInput{
		UserID: env.user.ID,
		ShopID: env.shop.ID,
		Items:  []PlaceOrderItemInput{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	if _, err := env.svc.ChangeStatus(order.ID, constants.OrderStatusReady); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("pending -> ready 应被拒绝, err = %v", err)
	}

	updated, err := env.svc.ChangeStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("pending -> cancelled 失败: %v", err)
	}
	if updated.Status != constants.OrderStatusCancelled {
		t.Fatalf("状态 = %s, 期望 cancelled", updated.Status)
	}
	if env.notifier.statusChanged != 1 {
		t.Fatalf("状态变更通知次数 = %d, 期望 1", env.notifier.statusChanged)
	}
}

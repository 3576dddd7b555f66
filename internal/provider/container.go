package provider

import (
	"time"

	"github.com/khornSaokhouch/server/internal/alert"
	"github.com/khornSaokhouch/server/internal/cache"
	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/push"
	"github.com/khornSaokhouch/server/internal/queue"
	"github.com/khornSaokhouch/server/internal/repository"
	"github.com/khornSaokhouch/server/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	PushSender  *push.Sender
	Telegram    *alert.Telegram

	// Repositories
	UserRepo        repository.UserRepository
	ShopRepo        repository.ShopRepository
	CategoryRepo    repository.CategoryRepository
	ItemRepo        repository.ItemRepository
	CartRepo        repository.CartRepository
	OrderRepo       repository.OrderRepository
	PromotionRepo   repository.PromotionRepository
	PaymentRepo     repository.PaymentRepository
	DeviceTokenRepo repository.DeviceTokenRepository

	// Services
	AuthService           *service.AuthService
	CatalogService        *service.CatalogService
	CartService           *service.CartService
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
	OrderService          *service.OrderService
	PaymentService        *service.PaymentService
	NotificationService   *service.NotificationService
	DeviceTokenService    *service.DeviceTokenService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initSenders()
	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initSenders() {
	if c.Config.Push.Enabled {
		sender, err := push.NewSender(push.Config{
			Endpoint:   c.Config.Push.Endpoint,
			ServerKey:  c.Config.Push.ServerKey,
			TimeoutSec: c.Config.Push.TimeoutSeconds,
		})
		if err != nil {
			logger.Warnw("provider_init_push_sender_failed", "error", err)
		} else {
			c.PushSender = sender
		}
	}

	if c.Config.Telegram.Enabled {
		telegram, err := alert.New(alert.Config{
			BotToken:   c.Config.Telegram.BotToken,
			ChatID:     c.Config.Telegram.ChatID,
			APIBase:    c.Config.Telegram.APIBase,
			TimeoutSec: c.Config.Telegram.TimeoutSeconds,
		})
		if err != nil {
			logger.Warnw("provider_init_telegram_failed", "error", err)
		} else {
			c.Telegram = telegram
		}
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ShopRepo = repository.NewShopRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ItemRepo = repository.NewItemRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.DeviceTokenRepo = repository.NewDeviceTokenRepository(db)
}

func (c *Container) initServices() {
	c.NotificationService = service.NewNotificationService(c.QueueClient)
	c.AuthService = service.NewAuthService(c.UserRepo, c.Config.JWT)
	c.CatalogService = service.NewCatalogService(c.ShopRepo, c.CategoryRepo, c.ItemRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ItemRepo)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo)
	c.OrderService = service.NewOrderService(
		models.DB, c.OrderRepo, c.ItemRepo, c.ShopRepo, c.PromotionRepo,
		c.PromotionService, c.NotificationService,
	)
	c.PaymentService = service.NewPaymentService(
		models.DB, c.PaymentRepo, c.OrderRepo, c.Config,
		c.NotificationService, c.enqueuePaymentExpire,
	)
	c.DeviceTokenService = service.NewDeviceTokenService(c.DeviceTokenRepo)
}

func (c *Container) enqueuePaymentExpire(paymentID uint, delay time.Duration) error {
	if c.QueueClient == nil {
		return nil
	}
	return c.QueueClient.EnqueuePaymentExpire(queue.PaymentExpirePayload{PaymentID: paymentID}, delay)
}

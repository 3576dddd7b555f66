package router

import (
	"fmt"
	"strings"

	"github.com/khornSaokhouch/server/internal/cache"
	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/constants"
	adminhandlers "github.com/khornSaokhouch/server/internal/http/handlers/admin"
	publichandlers "github.com/khornSaokhouch/server/internal/http/handlers/public"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fo"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		catalog := apiV1.Group("")
		{
			catalog.GET("/shops", publicHandler.ListShops)
			catalog.GET("/shops/:id", publicHandler.GetShop)
			catalog.GET("/shops/:id/categories", publicHandler.ListCategories)
			catalog.GET("/shops/:id/items", publicHandler.ListItems)
			catalog.GET("/items/:id", publicHandler.GetItem)
		}

		// 支付网关回调（网关侧签名校验，不走 JWT）
		apiV1.POST("/payments/qr/callback", publicHandler.PayWayCallback)
		apiV1.POST("/payments/webhook", publicHandler.StripeWebhook)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.Profile)
			user.PUT("/me/profile", publicHandler.UpdateProfile)
			user.PUT("/me/password", publicHandler.ChangePassword)

			user.GET("/cart", publicHandler.ListCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:id", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/cart/checkout", publicHandler.CheckoutCart)

			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.PUT("/orders/:id/status",
				RequireRoles(constants.UserRoleShopOwner, constants.UserRoleAdmin),
				adminHandler.UpdateOrderStatus)

			user.POST("/payments/qr", publicHandler.CreateQRPayment)
			user.GET("/payments/qr/status", publicHandler.GetQRPaymentStatus)
			user.POST("/payments/intent", publicHandler.CreateStripeIntent)
			user.POST("/payments/checkout-session", publicHandler.CreateStripeSession)
			user.GET("/payments/:id", publicHandler.GetPayment)

			user.POST("/device-tokens", publicHandler.RegisterDeviceToken)
			user.DELETE("/device-tokens", publicHandler.UnregisterDeviceToken)
		}

		// 管理接口（店主与平台管理员）
		admin := apiV1.Group("/admin")
		admin.Use(
			JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo),
			RequireRoles(constants.UserRoleShopOwner, constants.UserRoleAdmin),
		)
		{
			admin.GET("/shops", adminHandler.ListMyShops)
			admin.POST("/shops", adminHandler.CreateShop)
			admin.PUT("/shops/:id", adminHandler.UpdateShop)

			admin.POST("/shops/:id/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			admin.POST("/shops/:id/items", adminHandler.CreateItem)
			admin.PUT("/items/:id", adminHandler.UpdateItem)
			admin.DELETE("/items/:id", adminHandler.DeleteItem)
			admin.POST("/items/:id/option-groups", adminHandler.CreateOptionGroup)
			admin.DELETE("/option-groups/:id", adminHandler.DeleteOptionGroup)
			admin.POST("/options", adminHandler.CreateOption)
			admin.DELETE("/options/:id", adminHandler.DeleteOption)

			admin.POST("/promotions", adminHandler.CreatePromotion)
			admin.GET("/promotions", adminHandler.ListPromotions)
			admin.PUT("/promotions/:id", adminHandler.UpdatePromotion)
			admin.DELETE("/promotions/:id", adminHandler.DeletePromotion)

			admin.GET("/shops/:id/orders", adminHandler.ListShopOrders)

			admin.GET("/payments", adminHandler.ListPayments)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

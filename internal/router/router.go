package router

import (
	"fmt"
	"strings"

	"github.com/fixmore/mall/internal/cache"
	"github.com/fixmore/mall/internal/config"
	adminhandlers "github.com/fixmore/mall/internal/http/handlers/admin"
	publichandlers "github.com/fixmore/mall/internal/http/handlers/public"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all API routes.
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
		redisPrefix = "fixmore"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		Message:       "too many login attempts",
	}
	paymentRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:payment", redisPrefix),
		WindowSeconds: cfg.Security.PaymentRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PaymentRateLimit.MaxRequests,
		Message:       "too many payment attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Storefront catalog, open to everyone.
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/products/:id/reviews", publicHandler.GetProductReviews)
			public.GET("/products/categories", publicHandler.GetCategories)
			public.GET("/payments/methods", publicHandler.GetPaymentMethods)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/refresh", publicHandler.Refresh)
		}

		// Buyer endpoints, bearer token required.
		user := apiV1.Group("")
		user.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateProfile)
			user.PUT("/me/password", publicHandler.ChangePassword)

			user.GET("/addresses", publicHandler.GetAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)
			user.PUT("/addresses/:id", publicHandler.UpdateAddress)
			user.DELETE("/addresses/:id", publicHandler.DeleteAddress)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart", publicHandler.AddCartItem)
			user.PUT("/cart/:product_id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/:product_id", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)

			user.POST("/orders", publicHandler.Checkout)
			user.GET("/orders", publicHandler.GetOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.GET("/orders/:id/track", publicHandler.TrackOrder)

			user.POST("/products/:id/reviews", publicHandler.CreateReview)

			payments := user.Group("/payments")
			payments.Use(RateLimitMiddleware(redisClient, paymentRule, KeyByIP))
			{
				payments.POST("/mpesa", publicHandler.InitiateMpesaPayment)
				payments.POST("/stripe/create-payment-intent", publicHandler.InitiateStripePayment)
			}
			user.GET("/payments/:id", publicHandler.GetPayment)
		}

		// Gateway callbacks authenticate by payload, not bearer token.
		apiV1.POST("/payments/mpesa/callback", publicHandler.MpesaCallback)
		apiV1.POST("/payments/stripe/webhook", publicHandler.StripeWebhook)

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			authorized := admin.Use(
				JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo),
				AdminRequiredMiddleware(),
				AdminRBACMiddleware(c.AuthzService),
			)
			{
				authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
				authorized.GET("/dashboard/stock", adminHandler.GetStockStats)
				authorized.GET("/dashboard/recent-orders", adminHandler.GetRecentOrders)

				authorized.GET("/products", adminHandler.GetProducts)
				authorized.GET("/products/low-stock", adminHandler.GetLowStockProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)
				authorized.POST("/products/:id/stock", adminHandler.AdjustStock)

				authorized.GET("/categories", adminHandler.GetCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				authorized.GET("/orders", adminHandler.GetOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
				authorized.POST("/orders/:id/ship", adminHandler.ShipOrder)
				authorized.POST("/orders/:id/deliver", adminHandler.MarkDelivered)

				authorized.GET("/coupons", adminHandler.GetCoupons)
				authorized.GET("/coupons/:id", adminHandler.GetCoupon)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

				authorized.GET("/reviews", adminHandler.GetReviews)
				authorized.PATCH("/reviews/:id/moderate", adminHandler.ModerateReview)
				authorized.DELETE("/reviews/:id", adminHandler.DeleteReview)

				authorized.GET("/users", adminHandler.GetUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)

				authorized.GET("/inventory-logs", adminHandler.GetInventoryLogs)

				authorized.GET("/payments", adminHandler.GetPayments)
				authorized.GET("/payments/:id", adminHandler.GetPayment)

				authorized.GET("/settings/shop", adminHandler.GetShopSettings)
				authorized.PUT("/settings/shop", adminHandler.UpdateShopSettings)
				authorized.POST("/settings/email/test", adminHandler.TestEmail)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		healthCheck(c)
	})

	return r
}

func healthCheck(c *gin.Context) {
	dbStatus := "ok"
	if models.DB == nil {
		dbStatus = "down"
	} else if sqlDB, err := models.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
	}

	redisStatus := "disabled"
	if cache.Enabled() {
		redisStatus = "ok"
		if err := cache.Ping(c.Request.Context()); err != nil {
			redisStatus = "down"
		}
	}

	status := "ok"
	httpStatus := 200
	if dbStatus != "ok" {
		status = "degraded"
		httpStatus = 503
	}
	c.JSON(httpStatus, gin.H{
		"status":   status,
		"database": dbStatus,
		"redis":    redisStatus,
	})
}

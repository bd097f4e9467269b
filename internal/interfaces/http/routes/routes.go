// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/zodak/storefront-api/internal/config"
	"github.com/zodak/storefront-api/internal/domain/cart"
	"github.com/zodak/storefront-api/internal/domain/order"
	"github.com/zodak/storefront-api/internal/domain/product"
	"github.com/zodak/storefront-api/internal/domain/promo"
	"github.com/zodak/storefront-api/internal/domain/upload"
	"github.com/zodak/storefront-api/internal/interfaces/http/handlers"
	"github.com/zodak/storefront-api/internal/interfaces/http/middleware"
	"github.com/zodak/storefront-api/internal/notify"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group onto rg
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	logger := newLogger(cfg)

	// Shared services
	productService := product.NewService(db, cfg)
	promoService := promo.NewService(promo.NewStaticTable())
	cartService := cart.NewService(
		cart.NewRedisStore(redisClient),
		productService,
		notify.NewRedisNotifier(redisClient, logger),
		logger,
	)
	orderService := order.NewService(db, promoService, logger)
	uploadService := upload.NewService(db, cfg, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(cartService, cfg)
	promoHandler := handlers.NewPromoHandler(promoService)
	orderHandler := handlers.NewOrderHandler(orderService, cartService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	analyticsHandler := handlers.NewAnalyticsHandler(db)

	setupAuthRoutes(rg, cfg, authHandler)
	setupCatalogRoutes(rg, productHandler, promoHandler)
	setupCartRoutes(rg, cfg, cartHandler)
	setupOrderRoutes(rg, cfg, orderHandler)
	setupAdminRoutes(rg, cfg, productHandler, orderHandler, authHandler, uploadHandler, analyticsHandler)
}

func setupAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, authHandler *handlers.AuthHandler) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler, promoHandler *handlers.PromoHandler) {
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	rg.POST("/promo", promoHandler.Apply)
}

func setupCartRoutes(rg *gin.RouterGroup, cfg *config.Config, cartHandler *handlers.CartHandler) {
	c := rg.Group("/cart")
	c.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		c.GET("", cartHandler.GetCart)
		c.POST("/items", cartHandler.AddItem)
		c.PUT("/items/:lineId", cartHandler.UpdateItem)
		c.DELETE("/items/:lineId", cartHandler.RemoveItem)
		c.DELETE("", cartHandler.ClearCart)
		c.POST("/merge", middleware.AuthMiddleware(cfg), cartHandler.MergeCart)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, cfg *config.Config, orderHandler *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	{
		// Guest checkout is allowed, auth is optional on placement
		orders.POST("", middleware.OptionalAuthMiddleware(cfg), orderHandler.Create)

		authed := orders.Group("")
		authed.Use(middleware.AuthMiddleware(cfg))
		{
			authed.GET("", orderHandler.List)
			authed.GET("/:id", orderHandler.Get)
			authed.PUT("/:id/cancel", orderHandler.Cancel)
		}
	}
}

func setupAdminRoutes(
	rg *gin.RouterGroup,
	cfg *config.Config,
	productHandler *handlers.ProductHandler,
	orderHandler *handlers.OrderHandler,
	authHandler *handlers.AuthHandler,
	uploadHandler *handlers.UploadHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", analyticsHandler.Dashboard)

		products := admin.Group("/products")
		{
			products.GET("", productHandler.AdminGetProducts)
			products.POST("", productHandler.AdminCreateProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
			products.PUT("/:id/variants/:variantId/stock", productHandler.AdminUpdateStock)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminList)
			orders.PUT("/:id/status", orderHandler.AdminUpdateStatus)
		}

		admin.GET("/customers", authHandler.AdminListCustomers)

		uploads := admin.Group("/uploads")
		{
			uploads.POST("", uploadHandler.Upload)
			uploads.GET("", uploadHandler.List)
			uploads.DELETE("/:id", uploadHandler.Delete)
		}
	}
}

// newLogger builds the application logger the same way the request
// logging middleware does.
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

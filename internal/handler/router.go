package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/auth"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/middleware"
)

type RouterConfig struct {
	ProductService *service.ProductService
	CartService    *service.CartService
	AuthService    *service.AuthService
	Tokens         *auth.TokenManager
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	productHandler := NewProductHandler(cfg.ProductService, cfg.Logger)
	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)
	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	authenticated := middleware.Authentication(cfg.Tokens)
	adminOnly := middleware.RequireRole(string(domain.RoleAdmin))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		authRoutes := api.Group("/auth")
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", authenticated, authHandler.Me)

		products := api.Group("/products")
		products.GET("", productHandler.ListProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", authenticated, adminOnly, productHandler.CreateProduct)
		products.PUT("/:id", authenticated, adminOnly, productHandler.UpdateProduct)
		products.DELETE("/:id", authenticated, adminOnly, productHandler.DeleteProduct)

		cart := api.Group("/cart", authenticated)
		cart.GET("", cartHandler.GetCart)
		cart.POST("/add", cartHandler.AddItem)
		cart.PUT("/update", cartHandler.UpdateItem)
		cart.DELETE("/remove", cartHandler.RemoveItem)
		cart.DELETE("/clear", cartHandler.ClearCart)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

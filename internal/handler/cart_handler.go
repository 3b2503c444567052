package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/middleware"
)

type CartHandler struct {
	cartService *service.CartService
	logger      *zap.Logger
}

func NewCartHandler(cartService *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

type cartResponse struct {
	Message string `json:"message,omitempty"`
	domain.CartView
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err, "Failed to get cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse{CartView: *view})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req domain.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.cartService.AddItem(c.Request.Context(), userID, req.ProductID, quantity)
	if err != nil {
		writeError(c, h.logger, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse{Message: "Item added to cart successfully", CartView: *view})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req domain.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format"})
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product ID and quantity are required"})
		return
	}

	view, err := h.cartService.UpdateItem(c.Request.Context(), userID, req.ProductID, *req.Quantity)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse{Message: "Cart updated successfully", CartView: *view})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req domain.RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format"})
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		writeError(c, h.logger, err, "Failed to remove item from cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse{Message: "Item removed from cart successfully", CartView: *view})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	view, err := h.cartService.Clear(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, cartResponse{Message: "Cart cleared successfully", CartView: *view})
}

func userIDFrom(c *gin.Context) (string, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.UserID() == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return "", false
	}
	return claims.UserID(), true
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/middleware"
)

// writeError maps service errors to a status and a {"message": ...} body.
// Anything unrecognised is logged and reported as a generic server error.
func writeError(c *gin.Context, logger *zap.Logger, err error, action string) {
	var (
		invalid  *service.ValidationError
		badInput *service.BadRequestError
		stock    *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  invalid.Fields,
		})
	case errors.As(err, &badInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": badInput.Message})
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Insufficient stock",
			"available": stock.Available,
			"requested": stock.Requested,
		})
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock"})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case errors.Is(err, service.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found in cart"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, service.ErrCartConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Cart was changed by another request, please retry"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	default:
		logger.Error(action,
			zap.String("request_id", middleware.RequestIDFromContext(c.Request.Context())),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// bindProduct decodes a product payload and turns type mismatches into
// field-level validation errors.
func bindProduct(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return service.TypeMismatch(typeErr.Field)
	}
	return &service.BadRequestError{Message: "Invalid request format"}
}

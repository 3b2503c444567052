package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	q, err := parseProductQuery(c)
	if err != nil {
		writeError(c, h.logger, err, "Failed to list products")
		return
	}

	page, err := h.productService.ListProducts(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.logger, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, page)
}

func parseProductQuery(c *gin.Context) (domain.ProductQuery, error) {
	q := domain.ProductQuery{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortField: c.Query("sort"),
		SortOrder: domain.SortOrder(c.Query("order")),
	}

	var err error
	if q.MinPrice, err = floatParam(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = floatParam(c, "maxPrice"); err != nil {
		return q, err
	}
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(c, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &service.BadRequestError{Message: "Invalid " + name}
	}
	return &v, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, &service.BadRequestError{Message: "Invalid " + name}
	}
	return v, nil
}

func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		writeError(c, h.logger, err, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := bindProduct(c, &req); err != nil {
		writeError(c, h.logger, err, "Failed to create product")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var req domain.UpdateProductRequest
	if err := bindProduct(c, &req); err != nil {
		writeError(c, h.logger, err, "Failed to update product")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	if err := h.productService.DeleteProduct(c.Request.Context(), productID); err != nil {
		writeError(c, h.logger, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

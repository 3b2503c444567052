package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/events"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/repository"
)

type CatalogOptions struct {
	DefaultLimit int
	MaxLimit     int
}

type ProductService struct {
	productRepo repository.ProductRepository
	publisher   events.Publisher
	validate    *validator.Validate
	opts        CatalogOptions
	logger      *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, publisher events.Publisher, opts CatalogOptions, logger *zap.Logger) *ProductService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = domain.DefaultPageLimit
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
		validate:    newValidator(),
		opts:        opts,
		logger:      logger,
	}
}

// ListProducts fills in query defaults, rejects malformed paging or sorting
// and clamps the page size to the configured maximum.
func (s *ProductService) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 1 {
		return nil, badRequest("Page must be a positive integer")
	}
	switch {
	case q.Limit == 0:
		q.Limit = s.opts.DefaultLimit
	case q.Limit < 0:
		return nil, badRequest("Limit must be a positive integer")
	case q.Limit > s.opts.MaxLimit:
		q.Limit = s.opts.MaxLimit
	}

	if q.SortField == "" {
		q.SortField = domain.DefaultSortField
	}
	if !domain.ValidSortField(q.SortField) {
		return nil, badRequest("Invalid sort field: %s", q.SortField)
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortDesc
	}
	if q.SortOrder != domain.SortAsc && q.SortOrder != domain.SortDesc {
		return nil, badRequest("Sort order must be asc or desc")
	}

	return s.productRepo.ListProducts(ctx, q)
}

func (s *ProductService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.productRepo.ListCategories(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateProduct(s.validate, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ProductID:   uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Stock:       *req.Stock,
		Rating:      req.Rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		s.logger.Error("Failed to save product",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created successfully",
		zap.String("product_id", product.ProductID),
		zap.String("category", string(product.Category)),
		zap.Int("initial_stock", product.Stock))

	s.publish(ctx, events.New(ctx, events.ProductCreated, product.ProductID, product))
	return product, nil
}

// UpdateProduct applies a partial patch. The merged product must pass the
// same rules as a new one before anything is written.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	existing, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return existing, nil
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		req.Description = &desc
	}

	merged := req.Apply(*existing)
	if err := validateProduct(s.validate, domain.AsCreateRequest(merged)); err != nil {
		return nil, err
	}

	product, err := s.productRepo.UpdateProduct(ctx, productID, req, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to update product",
			zap.String("product_id", productID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.String("product_id", productID),
		zap.Int("stock", product.Stock),
		zap.Float64("price", product.Price))

	s.publish(ctx, events.New(ctx, events.ProductUpdated, productID, product))
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		s.logger.Error("Failed to delete product",
			zap.String("product_id", productID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", productID))
	s.publish(ctx, events.New(ctx, events.ProductDeleted, productID, events.ProductDeletedPayload{ProductID: productID}))
	return nil
}

// publish never fails the caller: the mutation is already committed.
func (s *ProductService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("key", event.Key),
			zap.Error(err))
	}
}

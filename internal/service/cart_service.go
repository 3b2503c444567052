package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/events"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/repository"
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	maxRetries  int
	logger      *zap.Logger
}

// NewCartService retries a cart mutation up to maxRetries extra times when a
// concurrent writer changed the cart or the product stock in between.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, publisher events.Publisher, maxRetries int, logger *zap.Logger) *CartService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		publisher:   publisher,
		maxRetries:  maxRetries,
		logger:      logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem adds quantity units of a product. An existing line is increased
// and the combined quantity is checked against stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error) {
	if productID == "" {
		return nil, badRequest("Product ID is required")
	}
	if quantity < 1 {
		return nil, badRequest("Quantity must be at least 1")
	}

	cart, err := s.mutate(ctx, userID, func(cart *domain.Cart) ([]domain.StockGuard, error) {
		product, err := s.loadProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if quantity > product.Stock {
			return nil, &InsufficientStockError{ProductID: productID, Available: product.Stock, Requested: quantity}
		}

		if i := cart.Find(productID); i >= 0 {
			combined := cart.Items[i].Quantity + quantity
			if combined > product.Stock {
				return nil, &InsufficientStockError{ProductID: productID, Available: product.Stock, Requested: combined}
			}
			cart.Items[i].Quantity = combined
			return []domain.StockGuard{{ProductID: productID, Quantity: combined}}, nil
		}

		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
		return []domain.StockGuard{{ProductID: productID, Quantity: quantity}}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Item added to cart",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return s.viewAndPublish(ctx, cart, events.CartUpdated)
}

// UpdateItem sets the quantity of a line exactly. Zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error) {
	if productID == "" {
		return nil, badRequest("Product ID and quantity are required")
	}
	if quantity < 0 {
		return nil, badRequest("Quantity cannot be negative")
	}

	cart, err := s.mutate(ctx, userID, func(cart *domain.Cart) ([]domain.StockGuard, error) {
		product, err := s.loadProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if quantity > product.Stock {
			return nil, &InsufficientStockError{ProductID: productID, Available: product.Stock, Requested: quantity}
		}

		i := cart.Find(productID)
		if i < 0 {
			return nil, ErrCartItemNotFound
		}
		if quantity == 0 {
			cart.Remove(i)
			return nil, nil
		}
		cart.Items[i].Quantity = quantity
		return []domain.StockGuard{{ProductID: productID, Quantity: quantity}}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cart item updated",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return s.viewAndPublish(ctx, cart, events.CartUpdated)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.CartView, error) {
	if productID == "" {
		return nil, badRequest("Product ID is required")
	}

	cart, err := s.mutate(ctx, userID, func(cart *domain.Cart) ([]domain.StockGuard, error) {
		i := cart.Find(productID)
		if i < 0 {
			return nil, ErrCartItemNotFound
		}
		cart.Remove(i)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Item removed from cart",
		zap.String("user_id", userID),
		zap.String("product_id", productID))
	return s.viewAndPublish(ctx, cart, events.CartUpdated)
}

// Clear empties the cart. It is idempotent.
func (s *CartService) Clear(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.cartRepo.ClearCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cart cleared", zap.String("user_id", userID))
	return s.viewAndPublish(ctx, cart, events.CartCleared)
}

type cartMutation func(cart *domain.Cart) ([]domain.StockGuard, error)

// mutate runs read, apply, conditional write. A lost race on the cart
// version or on a stock guard restarts the cycle from a fresh read, so every
// attempt validates against current stock.
func (s *CartService) mutate(ctx context.Context, userID string, apply cartMutation) (*domain.Cart, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		cart, err := s.cartRepo.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := cart.Clone()
		guards, err := apply(next)
		if err != nil {
			return nil, err
		}

		err = s.cartRepo.SaveCart(ctx, next, guards)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) && !errors.Is(err, repository.ErrInsufficientStock) {
			return nil, err
		}

		lastErr = err
		s.logger.Debug("Cart write lost a race, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	if errors.Is(lastErr, repository.ErrInsufficientStock) {
		return nil, ErrInsufficientStock
	}
	s.logger.Warn("Cart write gave up after retries",
		zap.String("user_id", userID),
		zap.Int("retries", s.maxRetries))
	return nil, ErrCartConflict
}

func (s *CartService) loadProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *CartService) view(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := domain.NewCartView(cart, products)
	return &view, nil
}

func (s *CartService) viewAndPublish(ctx context.Context, cart *domain.Cart, t events.EventType) (*domain.CartView, error) {
	view, err := s.view(ctx, cart)
	if err != nil {
		return nil, err
	}

	event := events.New(ctx, t, cart.UserID, events.CartChangedPayload{
		UserID:     cart.UserID,
		Version:    cart.Version,
		TotalItems: view.TotalItems,
		TotalPrice: view.TotalPrice,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(t)),
			zap.String("user_id", cart.UserID),
			zap.Error(err))
	}
	return view, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrVersionConflict   = errors.New("cart version conflict")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	// GetProducts resolves many ids at once; unknown ids are absent from the result.
	GetProducts(ctx context.Context, productIDs []string) (map[string]*domain.Product, error)
	ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	UpdateProduct(ctx context.Context, productID string, patch domain.UpdateProductRequest, updatedAt time.Time) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type CartRepository interface {
	// GetCart returns an empty cart with version 0 when the user has none yet.
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// SaveCart writes the cart only if the stored version still equals
	// cart.Version and every guard holds. On success cart.Version is bumped.
	SaveCart(ctx context.Context, cart *domain.Cart, guards []domain.StockGuard) error
	// ClearCart empties the cart unconditionally and bumps its version.
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

func pageOf(matched []domain.Product, q domain.ProductQuery) *domain.ProductPage {
	domain.SortProducts(matched, q.SortField, q.SortOrder)
	page := q.Paginate(matched)
	return &page
}

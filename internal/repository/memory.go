package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

// MemoryProductRepository backs LOCAL_MODE and tests. It keeps the same
// contract as the DynamoDB repository.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]domain.Product)}
}

func (r *MemoryProductRepository) CreateProduct(_ context.Context, product *domain.Product) error {
	product.IndexSearchFields()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ProductID] = *product
	return nil
}

func (r *MemoryProductRepository) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) GetProducts(_ context.Context, productIDs []string) (map[string]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*domain.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *MemoryProductRepository) ListProducts(_ context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if q.Matches(&p) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	return pageOf(matched, q), nil
}

func (r *MemoryProductRepository) UpdateProduct(_ context.Context, productID string, patch domain.UpdateProductRequest, updatedAt time.Time) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	p = patch.Apply(p)
	p.UpdatedAt = updatedAt
	r.products[productID] = p
	return &p, nil
}

func (r *MemoryProductRepository) DeleteProduct(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[productID]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, productID)
	return nil
}

func (r *MemoryProductRepository) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[domain.Category]struct{})
	for _, p := range r.products {
		seen[p.Category] = struct{}{}
	}
	return sortedCategories(seen), nil
}

// stockAtLeast is used by the cart repository while it holds its own lock.
func (r *MemoryProductRepository) stockAtLeast(productID string, quantity int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[productID]
	return ok && p.Stock >= quantity
}

type MemoryCartRepository struct {
	mu       sync.Mutex
	carts    map[string]domain.Cart
	products *MemoryProductRepository
}

func NewMemoryCartRepository(products *MemoryProductRepository) *MemoryCartRepository {
	return &MemoryCartRepository{
		carts:    make(map[string]domain.Cart),
		products: products,
	}
}

func (r *MemoryCartRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	return cart.Clone(), nil
}

func (r *MemoryCartRepository) SaveCart(_ context.Context, cart *domain.Cart, guards []domain.StockGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored := r.carts[cart.UserID]; stored.Version != cart.Version {
		return ErrVersionConflict
	}
	for _, g := range guards {
		if !r.products.stockAtLeast(g.ProductID, g.Quantity) {
			return ErrInsufficientStock
		}
	}

	next := cart.Clone()
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	r.carts[cart.UserID] = *next

	cart.Version, cart.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

func (r *MemoryCartRepository) ClearCart(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[userID]
	cart.UserID = userID
	cart.Items = []domain.CartItem{}
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	r.carts[userID] = cart

	out := cart
	out.Items = []domain.CartItem{}
	return &out, nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return ErrUserExists
	}
	r.users[key] = *user
	return nil
}

func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is keyed by the owning user. Version is the optimistic concurrency
// token: every successful write bumps it by one.
type Cart struct {
	UserID    string     `dynamodbav:"user_id"    json:"userId"`
	Items     []CartItem `dynamodbav:"items"      json:"items"`
	Version   int64      `dynamodbav:"version"    json:"version"`
	UpdatedAt time.Time  `dynamodbav:"updated_at" json:"updatedAt"`
}

type CartItem struct {
	ProductID string    `dynamodbav:"product_id" json:"productId"`
	Quantity  int       `dynamodbav:"quantity"   json:"quantity"`
	AddedAt   time.Time `dynamodbav:"added_at"   json:"addedAt"`
}

// Find returns the index of the item for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Remove(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// Clone copies the cart so that a failed write never leaks a half-applied mutation.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = append([]CartItem(nil), c.Items...)
	return &out
}

// StockGuard asks the store to commit a cart write only while the product
// still has at least Quantity units in stock.
type StockGuard struct {
	ProductID string
	Quantity  int
}

// CartProduct is the subset of product fields shown next to a cart line.
type CartProduct struct {
	ProductID string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Image     string   `json:"image"`
	Category  Category `json:"category"`
	Stock     int      `json:"stock"`
}

type CartLine struct {
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

// CartView is the resolved cart returned to callers. Totals are computed at
// read time from current product prices.
type CartView struct {
	Items      []CartLine `json:"cart"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
}

// NewCartView resolves cart items against products. Items whose product no
// longer exists are left out of the view and the totals.
func NewCartView(cart *Cart, products map[string]*Product) CartView {
	view := CartView{Items: []CartLine{}}
	total := decimal.Zero
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		view.Items = append(view.Items, CartLine{
			Product: CartProduct{
				ProductID: p.ProductID,
				Name:      p.Name,
				Price:     p.Price,
				Image:     p.Image,
				Category:  p.Category,
				Stock:     p.Stock,
			},
			Quantity: item.Quantity,
		})
		view.TotalItems += item.Quantity
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	view.TotalPrice = total.Round(2).InexactFloat64()
	return view
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type RemoveFromCartRequest struct {
	ProductID string `json:"productId"`
}

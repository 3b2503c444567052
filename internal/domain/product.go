package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryBeauty      Category = "Beauty"
	CategoryToys        Category = "Toys"
)

// Categories lists every category a product may carry.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryBeauty,
	CategoryToys,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ProductID   string    `dynamodbav:"product_id"  json:"id"`
	Name        string    `dynamodbav:"name"        json:"name"`
	Description string    `dynamodbav:"description" json:"description"`
	Price       float64   `dynamodbav:"price"       json:"price"`
	Category    Category  `dynamodbav:"category"    json:"category"`
	Image       string    `dynamodbav:"image"       json:"image"`
	Stock       int       `dynamodbav:"stock"       json:"stock"`
	Rating      float64   `dynamodbav:"rating"      json:"rating"`
	CreatedAt   time.Time `dynamodbav:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"  json:"updatedAt"`

	// lower-cased copies used for case-insensitive search in the store
	NameLower        string `dynamodbav:"name_lower"        json:"-"`
	DescriptionLower string `dynamodbav:"description_lower" json:"-"`
}

// IndexSearchFields refreshes the lower-cased shadow fields from Name and Description.
func (p *Product) IndexSearchFields() {
	p.NameLower = strings.ToLower(p.Name)
	p.DescriptionLower = strings.ToLower(p.Description)
}

// CreateProductRequest is the payload for creating a product. Pointers
// distinguish a missing number from zero so "required" can be enforced.
type CreateProductRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"min=10"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Category    Category `json:"category"    validate:"category"`
	Image       string   `json:"image"`
	Stock       *int     `json:"stock"       validate:"required,gte=0"`
	Rating      float64  `json:"rating"      validate:"gte=0,lte=5"`
}

// UpdateProductRequest is a partial patch; nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Category    *Category `json:"category"`
	Image       *string   `json:"image"`
	Stock       *int      `json:"stock"`
	Rating      *float64  `json:"rating"`
}

// Empty reports whether the patch changes nothing.
func (r UpdateProductRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil &&
		r.Category == nil && r.Image == nil && r.Stock == nil && r.Rating == nil
}

// Apply returns a copy of p with the patch applied.
func (r UpdateProductRequest) Apply(p Product) Product {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = strings.TrimSpace(*r.Description)
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	p.IndexSearchFields()
	return p
}

// AsCreateRequest rebuilds a full payload from p so that a patched product
// can be checked against the same rules as a new one.
func AsCreateRequest(p Product) CreateProductRequest {
	price := p.Price
	stock := p.Stock
	return CreateProductRequest{
		Name:        p.Name,
		Description: p.Description,
		Price:       &price,
		Category:    p.Category,
		Image:       p.Image,
		Stock:       &stock,
		Rating:      p.Rating,
	}
}

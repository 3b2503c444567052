package client

import "github.com/cloud-wave-best-zizon/storefront-service/internal/domain"

// Wire types returned by the storefront API. They alias the server's own
// types so both sides decode the same JSON.
type (
	Product      = domain.Product
	Category     = domain.Category
	ProductQuery = domain.ProductQuery
	SortOrder    = domain.SortOrder
	ProductPage  = domain.ProductPage
	Pagination   = domain.Pagination
	CartView     = domain.CartView
	CartLine     = domain.CartLine
	CartProduct  = domain.CartProduct
	AuthResponse = domain.AuthResponse
	User         = domain.User
	Role         = domain.Role
)

const (
	SortAsc  = domain.SortAsc
	SortDesc = domain.SortDesc

	AllCategories = domain.AllCategories
)

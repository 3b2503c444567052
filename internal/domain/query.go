package domain

import (
	"cmp"
	"sort"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	// AllCategories disables the category filter.
	AllCategories = "all"

	DefaultSortField = "createdAt"
	DefaultPageLimit = 12
)

var productComparators = map[string]func(a, b *Product) int{
	"createdAt": func(a, b *Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt": func(a, b *Product) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"name":      func(a, b *Product) int { return cmp.Compare(a.NameLower, b.NameLower) },
	"price":     func(a, b *Product) int { return cmp.Compare(a.Price, b.Price) },
	"rating":    func(a, b *Product) int { return cmp.Compare(a.Rating, b.Rating) },
	"stock":     func(a, b *Product) int { return cmp.Compare(a.Stock, b.Stock) },
}

// ValidSortField reports whether products can be ordered by field.
func ValidSortField(field string) bool {
	_, ok := productComparators[field]
	return ok
}

// ProductQuery describes a filtered, sorted, paginated catalog listing.
// Page is 1-indexed.
type ProductQuery struct {
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Search    string
	SortField string
	SortOrder SortOrder
	Page      int
	Limit     int
}

// CategoryFilter returns the category to match exactly, if any.
func (q ProductQuery) CategoryFilter() (Category, bool) {
	if q.Category == "" || q.Category == AllCategories {
		return "", false
	}
	return Category(q.Category), true
}

// SearchTerm is the lower-cased search string, empty when no search applies.
func (q ProductQuery) SearchTerm() string {
	return strings.ToLower(strings.TrimSpace(q.Search))
}

// Matches applies the filter part of the query to a single product.
func (q ProductQuery) Matches(p *Product) bool {
	if c, ok := q.CategoryFilter(); ok && p.Category != c {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if term := q.SearchTerm(); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	return true
}

// SortProducts orders products in place. Ties are broken by product id so
// that pages are stable across calls.
func SortProducts(products []Product, field string, order SortOrder) {
	compare, ok := productComparators[field]
	if !ok {
		compare = productComparators[DefaultSortField]
	}
	sort.SliceStable(products, func(i, j int) bool {
		a, b := &products[i], &products[j]
		c := compare(a, b)
		if c == 0 {
			return a.ProductID < b.ProductID
		}
		if order == SortDesc {
			return c > 0
		}
		return c < 0
	})
}

type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Paginate cuts the requested page out of an already filtered and sorted result.
func (q ProductQuery) Paginate(matched []Product) ProductPage {
	total := len(matched)
	// pages past the end are empty; checking against total/Limit first keeps
	// (Page-1)*Limit from overflowing for huge page numbers
	skip := total
	if q.Page >= 1 && q.Limit > 0 && q.Page-1 <= total/q.Limit {
		skip = (q.Page - 1) * q.Limit
	}
	page := []Product{}
	if skip < total {
		end := min(skip+q.Limit, total)
		page = append(page, matched[skip:end]...)
	}

	totalPages := 0
	if q.Limit > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}

	return ProductPage{
		Products: page,
		Pagination: Pagination{
			CurrentPage:   q.Page,
			TotalPages:    totalPages,
			TotalProducts: total,
			HasNext:       skip+len(page) < total,
			HasPrev:       q.Page > 1,
		},
	}
}

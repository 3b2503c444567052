// Package seed loads the sample catalog into an empty store.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
)

func price(v float64) *float64 { return &v }
func stock(v int) *int         { return &v }

// SampleProducts is the demo catalog.
var SampleProducts = []domain.CreateProductRequest{
	{Name: "iPhone 15 Pro", Description: "Latest iPhone with titanium design and A17 Pro chip", Price: price(999), Category: domain.CategoryElectronics, Image: "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=300", Stock: stock(50), Rating: 4.8},
	{Name: "Samsung Galaxy S24", Description: "Premium Android smartphone with AI features", Price: price(899), Category: domain.CategoryElectronics, Image: "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=300", Stock: stock(30), Rating: 4.7},
	{Name: "MacBook Pro M3", Description: "Powerful laptop for professionals and creators", Price: price(1999), Category: domain.CategoryElectronics, Image: "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=300", Stock: stock(25), Rating: 4.9},
	{Name: "Nike Air Max 270", Description: "Comfortable running shoes with Max Air cushioning", Price: price(150), Category: domain.CategoryClothing, Image: "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=300", Stock: stock(100), Rating: 4.5},
	{Name: "Adidas Ultraboost 22", Description: "High-performance running shoes with Boost technology", Price: price(180), Category: domain.CategoryClothing, Image: "https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?w=300", Stock: stock(75), Rating: 4.6},
	{Name: "The Great Gatsby", Description: "Classic American novel by F. Scott Fitzgerald", Price: price(12), Category: domain.CategoryBooks, Image: "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300", Stock: stock(200), Rating: 4.4},
	{Name: "To Kill a Mockingbird", Description: "Harper Lee's masterpiece about justice and morality", Price: price(14), Category: domain.CategoryBooks, Image: "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=300", Stock: stock(150), Rating: 4.7},
	{Name: "Smart Coffee Maker", Description: "WiFi-enabled coffee maker with app control", Price: price(299), Category: domain.CategoryHome, Image: "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=300", Stock: stock(40), Rating: 4.3},
	{Name: "Air Purifier", Description: "HEPA filter air purifier for clean indoor air", Price: price(199), Category: domain.CategoryHome, Image: "https://images.unsplash.com/photo-1581578731548-c6a0c3f2f6c5?w=300", Stock: stock(60), Rating: 4.2},
	{Name: "Yoga Mat Premium", Description: "Non-slip yoga mat with carrying strap", Price: price(45), Category: domain.CategorySports, Image: "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=300", Stock: stock(80), Rating: 4.4},
	{Name: "Wireless Headphones", Description: "Noise-cancelling wireless headphones with 30hr battery", Price: price(199), Category: domain.CategoryElectronics, Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=300", Stock: stock(45), Rating: 4.5},
	{Name: "Skincare Set", Description: "Complete skincare routine with cleanser, toner, and moisturizer", Price: price(89), Category: domain.CategoryBeauty, Image: "https://images.unsplash.com/photo-1570194065650-d99fb4bedf0a?w=300", Stock: stock(35), Rating: 4.3},
}

// Products inserts SampleProducts when the catalog is empty and reports how
// many were created.
func Products(ctx context.Context, products *service.ProductService, logger *zap.Logger) (int, error) {
	page, err := products.ListProducts(ctx, domain.ProductQuery{Page: 1, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if page.Pagination.TotalProducts > 0 {
		logger.Info("Catalog already populated, skipping seed",
			zap.Int("products", page.Pagination.TotalProducts))
		return 0, nil
	}

	for i, req := range SampleProducts {
		if _, err := products.CreateProduct(ctx, req); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", req.Name, err)
		}
	}
	logger.Info("Catalog seeded", zap.Int("products", len(SampleProducts)))
	return len(SampleProducts), nil
}

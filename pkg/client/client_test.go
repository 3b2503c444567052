package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/events"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/handler"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/repository"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/service"
	"github.com/cloud-wave-best-zizon/storefront-service/pkg/auth"
)

func newServer(t *testing.T) (*httptest.Server, *service.ProductService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	products := repository.NewMemoryProductRepository()
	tokens := auth.NewTokenManager("client-test", time.Hour)
	productService := service.NewProductService(products, events.NopPublisher{}, service.CatalogOptions{}, logger)

	router := handler.NewRouter(handler.RouterConfig{
		ProductService: productService,
		CartService:    service.NewCartService(repository.NewMemoryCartRepository(products), products, events.NopPublisher{}, 3, logger),
		AuthService:    service.NewAuthService(repository.NewMemoryUserRepository(), tokens, logger),
		Tokens:         tokens,
		Logger:         logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, productService
}

func TestClientAgainstServer(t *testing.T) {
	srv, catalog := newServer(t)
	ctx := context.Background()

	price, stock := 4.0, 3
	mug, err := catalog.CreateProduct(ctx, domain.CreateProductRequest{
		Name:        "Mug",
		Description: "Stoneware mug, 350ml",
		Price:       &price,
		Category:    domain.CategoryHome,
		Stock:       &stock,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c := New(srv.URL + "/")

	page, err := c.ListProducts(ctx, domain.ProductQuery{Category: "Home", Limit: 5})
	if err != nil || len(page.Products) != 1 {
		t.Fatalf("list: %v %+v", err, page)
	}
	cats, err := c.Categories(ctx)
	if err != nil || len(cats) != 1 || cats[0] != domain.CategoryHome {
		t.Fatalf("categories: %v %v", err, cats)
	}
	got, err := c.GetProduct(ctx, mug.ProductID)
	if err != nil || got.Name != "Mug" {
		t.Fatalf("get: %v %+v", err, got)
	}

	_, err = c.Cart(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %v", err)
	}

	if _, err := c.Register(ctx, "Ann", "ann@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.Token() == "" {
		t.Fatal("register should keep the token")
	}

	state := NewCartState(c)
	if err := state.Add(ctx, mug.ProductID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if snap := state.Snapshot(); snap.TotalItems != 2 || snap.TotalPrice != 8 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	err = state.Add(ctx, mug.ProductID, 2)
	if Message(err) != "Insufficient stock" {
		t.Fatalf("expected stock message, got %v", err)
	}
	if snap := state.Snapshot(); snap.TotalItems != 2 {
		t.Fatalf("failed add changed the mirror: %+v", snap)
	}

	if err := state.Update(ctx, mug.ProductID, 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if snap := state.Snapshot(); len(snap.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", snap)
	}

	err = state.Remove(ctx, mug.ProductID)
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	srv, _ := newServer(t)

	_, err := New(srv.URL).GetProduct(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Product not found" {
		t.Fatalf("unexpected error %v", err)
	}
}

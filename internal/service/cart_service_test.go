package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/events"
	"github.com/cloud-wave-best-zizon/storefront-service/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type cartFixture struct {
	products  *repository.MemoryProductRepository
	carts     *repository.MemoryCartRepository
	publisher *recordingPublisher
	svc       *CartService
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	products := repository.NewMemoryProductRepository()
	carts := repository.NewMemoryCartRepository(products)
	pub := &recordingPublisher{}
	return &cartFixture{
		products:  products,
		carts:     carts,
		publisher: pub,
		svc:       NewCartService(carts, products, pub, 3, zap.NewNop()),
	}
}

func (f *cartFixture) addProduct(t *testing.T, id string, price float64, stock int) {
	t.Helper()
	err := f.products.CreateProduct(context.Background(), &domain.Product{
		ProductID:   id,
		Name:        "Product " + id,
		Description: "Product used by cart tests",
		Category:    domain.CategoryHome,
		Price:       price,
		Stock:       stock,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
}

func quantityOf(view *domain.CartView, productID string) int {
	for _, line := range view.Items {
		if line.Product.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

func TestAddItemRespectsStockAcrossCalls(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 10, 5)
	ctx := context.Background()

	view, err := f.svc.AddItem(ctx, "u1", "p1", 3)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if quantityOf(view, "p1") != 3 {
		t.Fatalf("quantity = %d, want 3", quantityOf(view, "p1"))
	}

	_, err = f.svc.AddItem(ctx, "u1", "p1", 3)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("unexpected stock error %+v", stockErr)
	}

	view, err = f.svc.AddItem(ctx, "u1", "p1", 2)
	if err != nil {
		t.Fatalf("third add: %v", err)
	}
	if len(view.Items) != 1 || quantityOf(view, "p1") != 5 {
		t.Fatalf("expected a single line with 5 units, got %+v", view.Items)
	}
	if view.TotalItems != 5 || view.TotalPrice != 50 {
		t.Fatalf("totals = %d/%v, want 5/50", view.TotalItems, view.TotalPrice)
	}
}

func TestAddItemRejectsBadInput(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 10, 5)
	ctx := context.Background()

	var bad *BadRequestError
	if _, err := f.svc.AddItem(ctx, "u1", "", 1); !errors.As(err, &bad) {
		t.Fatalf("empty product id: got %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "u1", "p1", 0); !errors.As(err, &bad) {
		t.Fatalf("zero quantity: got %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "u1", "missing", 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product: got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 2.5, 4)
	f.addProduct(t, "p2", 1, 10)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "u1", "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "u1", "p2", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	view, err := f.svc.UpdateItem(ctx, "u1", "p1", 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if quantityOf(view, "p1") != 4 || view.TotalItems != 5 || view.TotalPrice != 11 {
		t.Fatalf("unexpected view %+v", view)
	}

	if _, err := f.svc.UpdateItem(ctx, "u1", "p1", 5); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	view, err = f.svc.UpdateItem(ctx, "u1", "p1", 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(view.Items) != 1 || quantityOf(view, "p1") != 0 {
		t.Fatalf("zero quantity should remove the line, got %+v", view.Items)
	}

	if _, err := f.svc.UpdateItem(ctx, "u1", "p1", 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestUpdateItemNegativeQuantityIsBadRequest(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	for _, productID := range []string{"p1", "never-created"} {
		_, err := f.svc.UpdateItem(ctx, "u1", productID, -1)
		var bad *BadRequestError
		if !errors.As(err, &bad) {
			t.Fatalf("%s: expected BadRequestError, got %v", productID, err)
		}
	}
}

func TestRemoveUnknownItemLeavesCartUnchanged(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 3, 5)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _ := f.carts.GetCart(ctx, "u1")

	if _, err := f.svc.RemoveItem(ctx, "u1", "p9"); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}

	after, _ := f.carts.GetCart(ctx, "u1")
	if after.Version != before.Version || len(after.Items) != 1 || after.Items[0].Quantity != 2 {
		t.Fatalf("cart changed: before %+v after %+v", before, after)
	}

	view, err := f.svc.RemoveItem(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Items)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 3, 5)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		view, err := f.svc.Clear(ctx, "u1")
		if err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		if len(view.Items) != 0 || view.TotalItems != 0 || view.TotalPrice != 0 {
			t.Fatalf("clear #%d left %+v", i+1, view)
		}
	}

	types := f.publisher.types()
	if len(types) != 3 || types[0] != events.CartUpdated || types[2] != events.CartCleared {
		t.Fatalf("unexpected events %v", types)
	}
}

func TestCartTotalsFollowPriceChanges(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 10, 5)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	price := 12.5
	if _, err := f.products.UpdateProduct(ctx, "p1", domain.UpdateProductRequest{Price: &price}, time.Now()); err != nil {
		t.Fatalf("update price: %v", err)
	}

	view, err := f.svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.TotalPrice != 25 {
		t.Fatalf("TotalPrice = %v, want 25", view.TotalPrice)
	}
}

func TestGetCartDropsDeletedProducts(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 10, 5)
	f.addProduct(t, "p2", 1, 5)
	ctx := context.Background()

	_, _ = f.svc.AddItem(ctx, "u1", "p1", 1)
	_, _ = f.svc.AddItem(ctx, "u1", "p2", 1)
	if err := f.products.DeleteProduct(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	view, err := f.svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 1 || view.TotalPrice != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
}

// racingCartRepository fails the first n saves the way a concurrent writer would.
type racingCartRepository struct {
	repository.CartRepository
	failures int
	err      error
	saves    int
}

func (r *racingCartRepository) SaveCart(ctx context.Context, cart *domain.Cart, guards []domain.StockGuard) error {
	r.saves++
	if r.saves <= r.failures {
		return r.err
	}
	return r.CartRepository.SaveCart(ctx, cart, guards)
}

func TestMutateRetriesLostRaces(t *testing.T) {
	products := repository.NewMemoryProductRepository()
	_ = products.CreateProduct(context.Background(), &domain.Product{ProductID: "p1", Price: 1, Stock: 5})

	racing := &racingCartRepository{
		CartRepository: repository.NewMemoryCartRepository(products),
		failures:       2,
		err:            repository.ErrVersionConflict,
	}
	svc := NewCartService(racing, products, events.NopPublisher{}, 3, zap.NewNop())

	view, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if racing.saves != 3 || view.TotalItems != 1 {
		t.Fatalf("saves = %d, view = %+v", racing.saves, view)
	}
}

func TestMutateGivesUp(t *testing.T) {
	products := repository.NewMemoryProductRepository()
	_ = products.CreateProduct(context.Background(), &domain.Product{ProductID: "p1", Price: 1, Stock: 5})

	cases := []struct {
		err  error
		want error
	}{
		{repository.ErrVersionConflict, ErrCartConflict},
		{repository.ErrInsufficientStock, ErrInsufficientStock},
	}
	for _, tc := range cases {
		racing := &racingCartRepository{
			CartRepository: repository.NewMemoryCartRepository(products),
			failures:       10,
			err:            tc.err,
		}
		svc := NewCartService(racing, products, events.NopPublisher{}, 2, zap.NewNop())

		if _, err := svc.AddItem(context.Background(), "u1", "p1", 1); !errors.Is(err, tc.want) {
			t.Fatalf("%v: got %v, want %v", tc.err, err, tc.want)
		}
		if racing.saves != 3 {
			t.Fatalf("%v: saves = %d, want 3", tc.err, racing.saves)
		}
	}
}

func TestClearSucceedsWhileSavesKeepLosing(t *testing.T) {
	products := repository.NewMemoryProductRepository()
	_ = products.CreateProduct(context.Background(), &domain.Product{ProductID: "p1", Price: 1, Stock: 5})
	carts := repository.NewMemoryCartRepository(products)
	ctx := context.Background()

	if _, err := NewCartService(carts, products, events.NopPublisher{}, 3, zap.NewNop()).AddItem(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	racing := &racingCartRepository{CartRepository: carts, failures: 100, err: repository.ErrVersionConflict}
	svc := NewCartService(racing, products, events.NopPublisher{}, 1, zap.NewNop())

	view, err := svc.Clear(ctx, "u1")
	if err != nil {
		t.Fatalf("clear under contention: %v", err)
	}
	if len(view.Items) != 0 || view.TotalItems != 0 || racing.saves != 0 {
		t.Fatalf("view = %+v, saves = %d", view, racing.saves)
	}

	stored, _ := carts.GetCart(ctx, "u1")
	if len(stored.Items) != 0 || stored.Version != 2 {
		t.Fatalf("stored cart = %+v", stored)
	}
}

func TestConcurrentAddsNeverExceedStock(t *testing.T) {
	f := newCartFixture(t)
	f.addProduct(t, "p1", 1, 5)
	f.svc = NewCartService(f.carts, f.products, f.publisher, 20, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AddItem(ctx, "u1", "p1", 1)
		}()
	}
	wg.Wait()

	view, err := f.svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.TotalItems != 5 {
		t.Fatalf("TotalItems = %d, want 5", view.TotalItems)
	}
}

package client

import (
	"context"
	"errors"
	"testing"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

type fakeCartAPI struct {
	view *domain.CartView
	err  error

	calls       int
	seenLoading bool
	state       *CartState
}

func (f *fakeCartAPI) respond() (*domain.CartView, error) {
	f.calls++
	if f.state != nil {
		f.seenLoading = f.state.Snapshot().Loading
	}
	return f.view, f.err
}

func (f *fakeCartAPI) Cart(context.Context) (*domain.CartView, error) { return f.respond() }
func (f *fakeCartAPI) AddToCart(context.Context, string, int) (*domain.CartView, error) {
	return f.respond()
}
func (f *fakeCartAPI) UpdateCartItem(context.Context, string, int) (*domain.CartView, error) {
	return f.respond()
}
func (f *fakeCartAPI) RemoveFromCart(context.Context, string) (*domain.CartView, error) {
	return f.respond()
}
func (f *fakeCartAPI) ClearCart(context.Context) (*domain.CartView, error) { return f.respond() }

func viewWith(quantity int, price float64) *domain.CartView {
	return &domain.CartView{
		Items:      []domain.CartLine{{Product: domain.CartProduct{ProductID: "p1", Name: "Mug", Price: price}, Quantity: quantity}},
		TotalItems: quantity,
		TotalPrice: float64(quantity) * price,
	}
}

func newState() (*CartState, *fakeCartAPI) {
	api := &fakeCartAPI{}
	state := NewCartState(api)
	api.state = state
	return state, api
}

func TestSuccessReplacesState(t *testing.T) {
	state, api := newState()
	ctx := context.Background()

	api.view = viewWith(2, 5)
	if err := state.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !api.seenLoading {
		t.Fatal("loading should be true while the request is in flight")
	}

	snap := state.Snapshot()
	if snap.Loading || snap.TotalItems != 2 || snap.TotalPrice != 10 || len(snap.Items) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	api.view = &domain.CartView{}
	if err := state.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	snap = state.Snapshot()
	if snap.Items == nil || len(snap.Items) != 0 || snap.TotalItems != 0 {
		t.Fatalf("unexpected snapshot after clear %+v", snap)
	}
}

func TestFailureKeepsItemsAndStopsLoading(t *testing.T) {
	state, api := newState()
	ctx := context.Background()

	api.view = viewWith(3, 2)
	if err := state.Update(ctx, "p1", 3); err != nil {
		t.Fatalf("update: %v", err)
	}

	api.view, api.err = nil, &APIError{StatusCode: 400, Message: "Insufficient stock"}
	err := state.Add(ctx, "p1", 10)
	if Message(err) != "Insufficient stock" {
		t.Fatalf("message = %q", Message(err))
	}

	snap := state.Snapshot()
	if snap.Loading {
		t.Fatal("loading should be cleared after a failure")
	}
	if snap.TotalItems != 3 || len(snap.Items) != 1 || snap.Items[0].Quantity != 3 {
		t.Fatalf("items should be untouched, got %+v", snap)
	}

	if err := state.Remove(ctx, "p1"); err == nil {
		t.Fatal("expected remove to report the failure")
	}
}

func TestLoadFailureIsSilent(t *testing.T) {
	state, api := newState()
	api.err = errors.New("connection refused")

	var updates []Snapshot
	state.Subscribe(func(s Snapshot) { updates = append(updates, s) })

	state.Load(context.Background())

	if len(updates) != 2 || !updates[0].Loading || updates[1].Loading {
		t.Fatalf("expected loading on then off, got %+v", updates)
	}
	if snap := state.Snapshot(); len(snap.Items) != 0 || snap.TotalItems != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSignOutResetsWithoutCallingServer(t *testing.T) {
	state, api := newState()
	api.view = viewWith(1, 9)
	state.Load(context.Background())

	calls := api.calls
	state.SignOut()

	snap := state.Snapshot()
	if len(snap.Items) != 0 || snap.TotalItems != 0 || snap.TotalPrice != 0 || snap.Loading {
		t.Fatalf("unexpected snapshot after sign-out %+v", snap)
	}
	if api.calls != calls {
		t.Fatal("sign-out must not reach the server")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	state, api := newState()
	api.view = viewWith(1, 9)
	state.Load(context.Background())

	snap := state.Snapshot()
	snap.Items[0].Quantity = 100

	if state.Snapshot().Items[0].Quantity != 1 {
		t.Fatal("mutating a snapshot changed the state")
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Fatal("nil error should have no message")
	}
	if Message(errors.New("dial tcp")) != "Something went wrong" {
		t.Fatal("transport errors should get a generic message")
	}
}

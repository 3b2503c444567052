package client

import (
	"context"
	"errors"
	"sync"
)

// CartAPI is the part of Client that CartState drives.
type CartAPI interface {
	Cart(ctx context.Context) (*CartView, error)
	AddToCart(ctx context.Context, productID string, quantity int) (*CartView, error)
	UpdateCartItem(ctx context.Context, productID string, quantity int) (*CartView, error)
	RemoveFromCart(ctx context.Context, productID string) (*CartView, error)
	ClearCart(ctx context.Context) (*CartView, error)
}

type Snapshot struct {
	Items      []CartLine
	TotalItems int
	TotalPrice float64
	Loading    bool
}

// CartState mirrors the server cart for a UI. A successful call replaces
// the whole local state with the server's answer. A failed call only clears
// the loading flag and leaves the items as they were.
type CartState struct {
	api CartAPI

	mu        sync.RWMutex
	snap      Snapshot
	listeners []func(Snapshot)
}

func NewCartState(api CartAPI) *CartState {
	return &CartState{api: api, snap: Snapshot{Items: []CartLine{}}}
}

// Snapshot returns a copy of the current state.
func (s *CartState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Subscribe registers fn to be called after every state change.
func (s *CartState) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load fetches the cart. Failures are swallowed: the state just stops loading.
func (s *CartState) Load(ctx context.Context) {
	_ = s.run(func() (*CartView, error) { return s.api.Cart(ctx) })
}

func (s *CartState) Add(ctx context.Context, productID string, quantity int) error {
	return s.run(func() (*CartView, error) { return s.api.AddToCart(ctx, productID, quantity) })
}

func (s *CartState) Update(ctx context.Context, productID string, quantity int) error {
	return s.run(func() (*CartView, error) { return s.api.UpdateCartItem(ctx, productID, quantity) })
}

func (s *CartState) Remove(ctx context.Context, productID string) error {
	return s.run(func() (*CartView, error) { return s.api.RemoveFromCart(ctx, productID) })
}

func (s *CartState) Clear(ctx context.Context) error {
	return s.run(func() (*CartView, error) { return s.api.ClearCart(ctx) })
}

// SignOut resets the mirror without calling the server.
func (s *CartState) SignOut() {
	s.set(func(snap *Snapshot) {
		*snap = Snapshot{Items: []CartLine{}}
	})
}

// Message returns the text a UI should show for an error from CartState.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return "Something went wrong"
	}
	return ""
}

func (s *CartState) run(call func() (*CartView, error)) error {
	s.set(func(snap *Snapshot) { snap.Loading = true })

	view, err := call()
	if err != nil {
		s.set(func(snap *Snapshot) { snap.Loading = false })
		return err
	}

	s.set(func(snap *Snapshot) {
		items := view.Items
		if items == nil {
			items = []CartLine{}
		}
		*snap = Snapshot{
			Items:      items,
			TotalItems: view.TotalItems,
			TotalPrice: view.TotalPrice,
		}
	})
	return nil
}

func (s *CartState) set(apply func(*Snapshot)) {
	s.mu.Lock()
	apply(&s.snap)
	snap := s.copyLocked()
	listeners := append([]func(Snapshot){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *CartState) copyLocked() Snapshot {
	out := s.snap
	out.Items = append([]CartLine{}, s.snap.Items...)
	return out
}

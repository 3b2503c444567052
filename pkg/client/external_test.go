package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloud-wave-best-zizon/storefront-service/pkg/client"
)

// Written from outside the package so only exported names are reachable.
func TestClientUsableFromOtherPackages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order") != "asc" || r.URL.Query().Get("category") != "Books" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"b1","name":"Go","price":12,"category":"Books","stock":3}],
			"pagination":{"currentPage":1,"totalPages":1,"totalProducts":1,"hasNext":false,"hasPrev":false}}`))
	})
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cart":[{"product":{"id":"b1","name":"Go","price":12},"quantity":2}],"totalItems":2,"totalPrice":24}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(srv.URL, client.WithToken("t"))
	ctx := context.Background()

	page, err := c.ListProducts(ctx, client.ProductQuery{Category: "Books", SortField: "price", SortOrder: client.SortAsc})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var first client.Product = page.Products[0]
	if first.ProductID != "b1" || first.Category != client.Category("Books") || page.Pagination.TotalProducts != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	state := client.NewCartState(c)
	state.Load(ctx)
	snap := state.Snapshot()
	var lines []client.CartLine = snap.Items
	if len(lines) != 1 || lines[0].Quantity != 2 || snap.TotalPrice != 24 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

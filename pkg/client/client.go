// Package client is a small Go client for the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloud-wave-best-zizon/storefront-service/internal/domain"
)

// FieldError is one entry of a validation failure response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// APIError is returned for every non-2xx response. Message is the server's
// human-readable message field.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account and keeps the returned token for later calls.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.SortField != "" {
		params.Set("sort", q.SortField)
	}
	if q.SortOrder != "" {
		params.Set("order", string(q.SortOrder))
	}
	if q.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, "/api/products", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/categories", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(productID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *Client) Cart(ctx context.Context) (*CartView, error) {
	return c.cartCall(ctx, http.MethodGet, "/api/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*CartView, error) {
	return c.cartCall(ctx, http.MethodPost, "/api/cart/add", domain.AddToCartRequest{ProductID: productID, Quantity: &quantity})
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*CartView, error) {
	return c.cartCall(ctx, http.MethodPut, "/api/cart/update", domain.UpdateCartItemRequest{ProductID: productID, Quantity: &quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*CartView, error) {
	return c.cartCall(ctx, http.MethodDelete, "/api/cart/remove", domain.RemoveFromCartRequest{ProductID: productID})
}

func (c *Client) ClearCart(ctx context.Context) (*CartView, error) {
	return c.cartCall(ctx, http.MethodDelete, "/api/cart/clear", nil)
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*CartView, error) {
	var view CartView
	if err := c.do(ctx, method, path, nil, body, &view); err != nil {
		return nil, err
	}
	if view.Items == nil {
		view.Items = []CartLine{}
	}
	return &view, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		apiErr.Errors = payload.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

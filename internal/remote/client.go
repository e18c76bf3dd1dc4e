// Package remote implements the HTTP client for the cart service. It is the
// engine's remote collaborator; the engine decides what a failure means, the
// client only reports it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"
)

// Client talks to the cart API for a single bearer token. It implements
// engine.RemoteCart.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a Client for the given API base URL and session token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy of the client bound to a different bearer token,
// used after login switches the session identity.
func (c *Client) WithToken(token string) *Client {
	return &Client{baseURL: c.baseURL, token: token, http: c.http}
}

func (c *Client) Fetch(ctx context.Context) (*domain.Cart, error) {
	return c.doCart(ctx, http.MethodGet, "/v1/cart", nil)
}

func (c *Client) AddItem(ctx context.Context, line domain.CartLine) (*domain.Cart, error) {
	body := map[string]any{
		"productId": line.ProductID,
		"quantity":  line.Quantity,
	}
	return c.doCart(ctx, http.MethodPost, "/v1/cart/items", body)
}

func (c *Client) UpdateItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	path := "/v1/cart/items/" + url.PathEscape(productID)
	return c.doCart(ctx, http.MethodPut, path, map[string]any{"quantity": quantity})
}

func (c *Client) RemoveItem(ctx context.Context, productID string) (*domain.Cart, error) {
	path := "/v1/cart/items/" + url.PathEscape(productID)
	return c.doCart(ctx, http.MethodDelete, path, nil)
}

func (c *Client) Clear(ctx context.Context) (*domain.Cart, error) {
	return c.doCart(ctx, http.MethodDelete, "/v1/cart", nil)
}

// Session opens an anonymous session and returns its bearer token and
// anonymous id.
func (c *Client) Session(ctx context.Context) (token, anonymousID string, err error) {
	var out struct {
		Token       string `json:"token"`
		AnonymousID string `json:"anonymousId"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", nil, &out); err != nil {
		return "", "", err
	}
	return out.Token, out.AnonymousID, nil
}

// Login exchanges credentials for a customer token. The server merges the
// current anonymous cart into the customer cart as part of the call, so the
// client should keep sending its anonymous token here.
func (c *Client) Login(ctx context.Context, email, password string) (token string, customer *domain.Customer, err error) {
	var out struct {
		Token    string           `json:"token"`
		Customer *domain.Customer `json:"customer"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/login", body, &out); err != nil {
		return "", nil, err
	}
	return out.Token, out.Customer, nil
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var out struct {
		Results []domain.Product `json:"results"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/products", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Product fetches catalog display data for a single product.
func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.doJSON(ctx, http.MethodGet, "/v1/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Coupon resolves a coupon code through the server-side registry. A 404 maps
// to domain.ErrInvalidCoupon.
func (c *Client) Coupon(ctx context.Context, code string) (*domain.Coupon, error) {
	var out domain.Coupon
	err := c.doJSON(ctx, http.MethodGet, "/v1/coupons/"+url.PathEscape(code), nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, domain.ErrInvalidCoupon
		}
		return nil, err
	}
	return &out, nil
}

// Lookup implements coupon.Registry on top of Coupon, so the engine can use
// the server-side registry directly.
func (c *Client) Lookup(ctx context.Context, code string) (*domain.Coupon, error) {
	return c.Coupon(ctx, code)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cart api: status %d: %s", e.Code, e.Body)
}

func (c *Client) doCart(ctx context.Context, method, path string, body any) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.doJSON(ctx, method, path, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func cartFixture() domain.Cart {
	return domain.Cart{
		ID:      "cart-1",
		Version: 2,
		Lines:   []domain.CartLine{{ProductID: "p1", Name: "Mug", UnitPriceCents: 1299, Quantity: 2}},
	}
}

func TestClientAddItem(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(cartFixture())
	}))
	defer srv.Close()

	client := New(srv.URL, "tok-123")
	cart, err := client.AddItem(context.Background(), domain.CartLine{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/v1/cart/items", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "p1", gotBody["productId"])
	assert.Equal(t, float64(2), gotBody["quantity"])
	assert.Equal(t, "cart-1", cart.ID)
	require.Len(t, cart.Lines, 1)
}

func TestClientUpdateAndRemovePaths(t *testing.T) {
	var paths []string
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		methods = append(methods, r.Method)
		json.NewEncoder(w).Encode(domain.Cart{})
	}))
	defer srv.Close()

	client := New(srv.URL, "tok")
	ctx := context.Background()

	_, err := client.UpdateItem(ctx, "p1", 5)
	require.NoError(t, err)
	_, err = client.RemoveItem(ctx, "p1")
	require.NoError(t, err)
	_, err = client.Clear(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"/v1/cart/items/p1", "/v1/cart/items/p1", "/v1/cart"}, paths)
	assert.Equal(t, []string{http.MethodPut, http.MethodDelete, http.MethodDelete}, methods)
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no cart", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "tok")
	_, err := client.Fetch(context.Background())
	require.Error(t, err)

	se, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Contains(t, se.Body, "no cart")
}

func TestClientCouponNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := New(srv.URL, "tok")
	_, err := client.Coupon(context.Background(), "BOGUS")
	assert.ErrorIs(t, err, domain.ErrInvalidCoupon)
}

func TestClientCouponFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/coupons/WELLNESS20", r.URL.Path)
		json.NewEncoder(w).Encode(domain.Coupon{Code: "WELLNESS20", Kind: domain.DiscountPercentage, Value: 20})
	}))
	defer srv.Close()

	client := New(srv.URL, "tok")
	c, err := client.Coupon(context.Background(), "WELLNESS20")
	require.NoError(t, err)
	assert.Equal(t, int64(20), c.Value)
}

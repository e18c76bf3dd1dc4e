package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/coupon"
	"storefront/internal/domain"
)

type stubStore struct {
	saved   []domain.Cart
	loaded  *domain.Cart
	saveErr error
}

func (s *stubStore) Save(_ context.Context, cart domain.Cart) error {
	s.saved = append(s.saved, cart)
	return s.saveErr
}

func (s *stubStore) Load(_ context.Context) (*domain.Cart, error) {
	return s.loaded, nil
}

type stubRemote struct {
	fetchCart  *domain.Cart
	fetchErr   error
	result     *domain.Cart
	err        error
	addCalls   int
	lastAdd    domain.CartLine
	updateID   string
	updateQty  int
	removeID   string
	clearCalls int

	// onAdd lets a test mutate the manager mid-flight to simulate a slow
	// response landing after a newer local mutation.
	onAdd func()
}

func (r *stubRemote) Fetch(context.Context) (*domain.Cart, error) {
	return r.fetchCart, r.fetchErr
}

func (r *stubRemote) AddItem(_ context.Context, line domain.CartLine) (*domain.Cart, error) {
	r.addCalls++
	r.lastAdd = line
	if r.onAdd != nil {
		r.onAdd()
	}
	return r.result, r.err
}

func (r *stubRemote) UpdateItem(_ context.Context, productID string, quantity int) (*domain.Cart, error) {
	r.updateID = productID
	r.updateQty = quantity
	return r.result, r.err
}

func (r *stubRemote) RemoveItem(_ context.Context, productID string) (*domain.Cart, error) {
	r.removeID = productID
	return r.result, r.err
}

func (r *stubRemote) Clear(context.Context) (*domain.Cart, error) {
	r.clearCalls++
	return r.result, r.err
}

func mug() domain.Product {
	return domain.Product{ID: "p-mug", Name: "Mug", PriceCents: 20000, ImageURL: "mug.png"}
}

func newAnonymous(t *testing.T, store *stubStore) *Manager {
	t.Helper()
	m, err := New(Options{Store: store, Logger: zerolog.Nop()})
	require.NoError(t, err)
	m.Initialize(context.Background(), domain.Anonymous("anon-1"))
	return m
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestInitializeEmptyWhenNothingPersisted(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	assert.Empty(t, m.Snapshot().Lines)
}

func TestInitializeLoadsPersistedCart(t *testing.T) {
	store := &stubStore{loaded: &domain.Cart{
		Version: 4,
		Lines:   []domain.CartLine{{ProductID: "p1", Quantity: 2, UnitPriceCents: 100}},
	}}
	m := newAnonymous(t, store)

	got := m.Snapshot()
	assert.Equal(t, int64(4), got.Version)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "p1", got.Lines[0].ProductID)
}

func TestInitializeAuthenticatedRemoteWins(t *testing.T) {
	store := &stubStore{loaded: &domain.Cart{Lines: []domain.CartLine{{ProductID: "local", Quantity: 1}}}}
	remote := &stubRemote{fetchCart: &domain.Cart{
		Version: 9,
		Lines:   []domain.CartLine{{ProductID: "server", Quantity: 3}},
	}}
	m, err := New(Options{Store: store, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)

	m.Initialize(context.Background(), domain.Authenticated("cust-1", "tok"))

	got := m.Snapshot()
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "server", got.Lines[0].ProductID)
	assert.Equal(t, int64(9), got.Version)
	require.NotEmpty(t, store.saved, "remote cart cached locally")
	assert.Equal(t, "server", store.saved[len(store.saved)-1].Lines[0].ProductID)
}

func TestInitializeAuthenticatedRemoteFailureKeepsLocal(t *testing.T) {
	store := &stubStore{loaded: &domain.Cart{Lines: []domain.CartLine{{ProductID: "local", Quantity: 1}}}}
	remote := &stubRemote{fetchErr: errors.New("network down")}
	m, err := New(Options{Store: store, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)

	m.Initialize(context.Background(), domain.Authenticated("cust-1", "tok"))

	got := m.Snapshot()
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "local", got.Lines[0].ProductID)
}

func TestAddItemCapturesSnapshotPrice(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	m.AddItem(context.Background(), mug(), 2)

	got := m.Snapshot()
	require.Len(t, got.Lines, 1)
	line := got.Lines[0]
	assert.Equal(t, "p-mug", line.ProductID)
	assert.Equal(t, int64(20000), line.UnitPriceCents)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "mug.png", line.ImageRef)
}

func TestAddItemReplacesQuantity(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	m.AddItem(ctx, mug(), 2)
	m.AddItem(ctx, mug(), 5)

	got := m.Snapshot()
	require.Len(t, got.Lines, 1, "one line per product")
	assert.Equal(t, 5, got.Lines[0].Quantity, "replace, not accumulate")
}

func TestAddItemAccumulatePolicy(t *testing.T) {
	m, err := New(Options{Store: &stubStore{}, AddPolicy: AddAccumulate, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Anonymous("anon-1"))
	m.AddItem(ctx, mug(), 2)
	m.AddItem(ctx, mug(), 3)

	got := m.Snapshot()
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 5, got.Lines[0].Quantity)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	m.AddItem(context.Background(), mug(), 0)
	assert.Equal(t, 1, m.Snapshot().Lines[0].Quantity)
}

func TestAddItemPersistsAfterEveryMutation(t *testing.T) {
	store := &stubStore{}
	m := newAnonymous(t, store)
	before := len(store.saved)
	m.AddItem(context.Background(), mug(), 1)
	assert.Greater(t, len(store.saved), before)
}

func TestAddItemRemoteFailureFallsBackLocally(t *testing.T) {
	store := &stubStore{}
	remote := &stubRemote{err: errors.New("boom")}
	m, err := New(Options{Store: store, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Authenticated("cust-1", "tok"))

	m.AddItem(ctx, mug(), 2)

	got := m.Snapshot()
	require.Len(t, got.Lines, 1, "mutation never silently lost")
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, 1, remote.addCalls)
}

func TestAddItemAdoptsRemoteResult(t *testing.T) {
	remote := &stubRemote{result: &domain.Cart{
		Version: 7,
		Lines:   []domain.CartLine{{ProductID: "p-mug", Quantity: 2, UnitPriceCents: 20000}},
	}}
	m, err := New(Options{Store: &stubStore{}, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Authenticated("cust-1", "tok"))

	m.AddItem(ctx, mug(), 2)

	got := m.Snapshot()
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(7), got.Version)
	assert.Equal(t, "p-mug", remote.lastAdd.ProductID)
}

func TestStaleRemoteResponseDiscarded(t *testing.T) {
	store := &stubStore{}
	remote := &stubRemote{result: &domain.Cart{
		Lines: []domain.CartLine{{ProductID: "p-mug", Quantity: 2}},
	}}
	m, err := New(Options{Store: store, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Authenticated("cust-1", "tok"))

	// A newer mutation lands while the add response is in flight.
	remote.onAdd = func() {
		m.applyLocal(func(c *domain.Cart) {
			c.Lines = []domain.CartLine{{ProductID: "newer", Quantity: 9}}
		})
		m.nextSeq()
	}
	m.AddItem(ctx, mug(), 2)

	got := m.Snapshot()
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "newer", got.Lines[0].ProductID, "slow response must not overwrite newer state")
}

func TestRemoveItemIdempotent(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	m.AddItem(ctx, mug(), 1)

	m.RemoveItem(ctx, "does-not-exist")
	require.Len(t, m.Snapshot().Lines, 1)

	m.RemoveItem(ctx, "p-mug")
	assert.Empty(t, m.Snapshot().Lines)

	m.RemoveItem(ctx, "p-mug")
	assert.Empty(t, m.Snapshot().Lines)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	m.AddItem(ctx, mug(), 3)

	m.UpdateQuantity(ctx, "p-mug", 0)
	assert.Empty(t, m.Snapshot().Lines)
}

func TestUpdateQuantityMutatesLine(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	m.AddItem(ctx, mug(), 3)

	m.UpdateQuantity(ctx, "p-mug", 7)
	assert.Equal(t, 7, m.Snapshot().Lines[0].Quantity)
}

func TestUpdateQuantityRemoteFailureKeepsLocal(t *testing.T) {
	remote := &stubRemote{err: errors.New("timeout")}
	m, err := New(Options{Store: &stubStore{}, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Authenticated("cust-1", "tok"))
	remote.err = nil
	remote.result = &domain.Cart{Lines: []domain.CartLine{{ProductID: "p-mug", Quantity: 3}}}
	m.AddItem(ctx, mug(), 3)

	remote.err = errors.New("timeout")
	m.UpdateQuantity(ctx, "p-mug", 5)

	assert.Equal(t, 5, m.Snapshot().Lines[0].Quantity, "no rollback on remote failure")
	assert.Equal(t, "p-mug", remote.updateID)
	assert.Equal(t, 5, remote.updateQty)
}

func TestClearEmptiesCart(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	m.AddItem(ctx, mug(), 2)

	m.Clear(ctx)
	assert.Empty(t, m.Snapshot().Lines)
}

func TestClearAuthenticatedFallsBackOnFailure(t *testing.T) {
	remote := &stubRemote{}
	m, err := New(Options{Store: &stubStore{}, Remote: remote, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Authenticated("cust-1", "tok"))
	remote.result = &domain.Cart{Lines: []domain.CartLine{{ProductID: "p-mug", Quantity: 2}}}
	m.AddItem(ctx, mug(), 2)

	remote.result = nil
	remote.err = errors.New("boom")
	m.Clear(ctx)

	assert.Empty(t, m.Snapshot().Lines)
	assert.Equal(t, 1, remote.clearCalls)
}

func TestApplyCouponUnknownKeepsApplied(t *testing.T) {
	reg := coupon.NewStatic(domain.Coupon{Code: "WELLNESS20", Kind: domain.DiscountPercentage, Value: 20})
	m, err := New(Options{Store: &stubStore{}, Coupons: reg, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Anonymous("anon-1"))

	_, err = m.ApplyCoupon(ctx, "WELLNESS20")
	require.NoError(t, err)

	_, err = m.ApplyCoupon(ctx, "BOGUS")
	assert.ErrorIs(t, err, domain.ErrInvalidCoupon)

	applied := m.AppliedCoupon()
	require.NotNil(t, applied, "bad attempt must not clear the applied coupon")
	assert.Equal(t, "WELLNESS20", applied.Code)
}

func TestApplyCouponNoneAppliedInitially(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	assert.Nil(t, m.AppliedCoupon())

	_, err := m.ApplyCoupon(context.Background(), "ANY")
	assert.ErrorIs(t, err, domain.ErrInvalidCoupon)
	assert.Nil(t, m.AppliedCoupon())
}

func TestQuoteScenarios(t *testing.T) {
	reg := coupon.NewStatic(domain.Coupon{Code: "WELLNESS20", Kind: domain.DiscountPercentage, Value: 20})
	m, err := New(Options{Store: &stubStore{}, Coupons: reg, Logger: zerolog.Nop()})
	require.NoError(t, err)
	ctx := context.Background()
	m.Initialize(ctx, domain.Anonymous("anon-1"))
	m.AddItem(ctx, mug(), 2)

	quote := m.Quote()
	assert.Equal(t, int64(40000), quote.SubtotalCents)
	assert.Equal(t, int64(0), quote.DiscountCents)
	assert.Equal(t, int64(5000), quote.ShippingCents)
	assert.Equal(t, int64(7200), quote.TaxCents)
	assert.Equal(t, int64(52200), quote.TotalCents)

	_, err = m.ApplyCoupon(ctx, "wellness20")
	require.NoError(t, err)

	quote = m.Quote()
	assert.Equal(t, int64(8000), quote.DiscountCents)
	assert.Equal(t, int64(32000), quote.TaxableCents)
	assert.Equal(t, int64(5000), quote.ShippingCents)
	assert.Equal(t, int64(5760), quote.TaxCents)
	assert.Equal(t, int64(42760), quote.TotalCents)
}

func TestSnapshotIsIsolated(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	m.AddItem(ctx, mug(), 2)

	snap := m.Snapshot()
	snap.Lines[0].Quantity = 99

	assert.Equal(t, 2, m.Snapshot().Lines[0].Quantity, "snapshot mutation must not leak")
}

func TestVersionBumpsOnMutation(t *testing.T) {
	m := newAnonymous(t, &stubStore{})
	ctx := context.Background()
	v0 := m.Snapshot().Version
	m.AddItem(ctx, mug(), 1)
	v1 := m.Snapshot().Version
	m.UpdateQuantity(ctx, "p-mug", 4)
	v2 := m.Snapshot().Version

	assert.Greater(t, v1, v0)
	assert.Greater(t, v2, v1)
}

// Package engine owns the client-side cart: it reconciles the locally cached
// cart with the remote cart service and exposes the mutation operations. The
// design is local-first: a remote failure never loses a mutation and never
// surfaces as an error from a mutation, it only degrades the operation to a
// local-only update and logs.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"storefront/internal/coupon"
	"storefront/internal/domain"
	"storefront/internal/localstore"
	"storefront/internal/pricing"
)

// RemoteCart is the cart service consumed for authenticated identities. Every
// method returns the server's view of the cart after the operation.
type RemoteCart interface {
	Fetch(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, line domain.CartLine) (*domain.Cart, error)
	UpdateItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, productID string) (*domain.Cart, error)
	Clear(ctx context.Context) (*domain.Cart, error)
}

// AddPolicy controls what adding an already-present product does.
type AddPolicy int

const (
	// AddReplace overwrites the existing line's quantity with the new one.
	AddReplace AddPolicy = iota
	// AddAccumulate sums the quantities instead.
	AddAccumulate
)

// Options configures a Manager. Store is required; Remote, Coupons and Policy
// are optional (a zero Policy falls back to pricing.DefaultPolicy).
type Options struct {
	Store     localstore.Store
	Remote    RemoteCart
	Coupons   coupon.Registry
	Policy    pricing.Policy
	AddPolicy AddPolicy
	Logger    zerolog.Logger
}

// Manager holds the single authoritative Cart value for a session. All
// mutation goes through its methods; readers get snapshots.
type Manager struct {
	mu       sync.Mutex
	cart     domain.Cart
	identity domain.Identity
	applied  *domain.Coupon
	seq      uint64

	store     localstore.Store
	remote    RemoteCart
	coupons   coupon.Registry
	policy    pricing.Policy
	addPolicy AddPolicy
	logger    zerolog.Logger
}

// New builds a Manager. It fails fast on a missing store, which is a wiring
// error, not a runtime condition.
func New(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("engine: local store required")
	}
	if opts.Policy == (pricing.Policy{}) {
		opts.Policy = pricing.DefaultPolicy()
	}
	return &Manager{
		store:     opts.Store,
		remote:    opts.Remote,
		coupons:   opts.Coupons,
		policy:    opts.Policy,
		addPolicy: opts.AddPolicy,
		logger:    opts.Logger.With().Str("component", "cart-engine").Logger(),
	}, nil
}

// Initialize establishes the cart for the given identity. Anonymous: the
// locally persisted cart, or empty when none exists or it cannot be parsed.
// Authenticated: the remote cart becomes authoritative on success and is
// cached locally; on failure the already-loaded local cart is retained and
// the error is only logged.
func (m *Manager) Initialize(ctx context.Context, identity domain.Identity) {
	local, err := m.store.Load(ctx)
	if err != nil || local == nil {
		local = &domain.Cart{}
	}

	m.mu.Lock()
	m.identity = identity
	m.cart = *local
	m.mu.Unlock()

	if identity.IsAuthenticated() && m.remote != nil {
		seq := m.nextSeq()
		remote, err := m.remote.Fetch(ctx)
		if err != nil {
			m.logger.Warn().Err(err).Msg("remote cart fetch failed, keeping local cart")
		} else {
			m.adopt(seq, remote)
		}
	}
	m.persist(ctx)
}

// Login transitions the session to an authenticated identity and re-runs
// Initialize. This is the reconciliation point: the server merges the
// anonymous cart into the customer cart, and the fetched result becomes
// authoritative here.
func (m *Manager) Login(ctx context.Context, identity domain.Identity) {
	m.Initialize(ctx, identity)
}

// AddItem places a snapshot of product in the cart. Quantities below one are
// treated as one. When a line for the product already exists the configured
// AddPolicy decides between replacing and accumulating its quantity. For
// authenticated identities the remote service is tried first; on failure the
// mutation is applied locally so the operation never silently does nothing.
func (m *Manager) AddItem(ctx context.Context, product domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	line := domain.CartLine{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents,
		Quantity:       quantity,
		ImageRef:       product.ImageURL,
		AddedAt:        time.Now().UTC(),
	}

	seq := m.nextSeq()
	if m.isAuthenticated() {
		remote, err := m.remote.AddItem(ctx, line)
		if err != nil {
			m.logger.Warn().Err(err).Str("product_id", line.ProductID).Msg("remote add failed, applying locally")
			m.applyLocal(func(c *domain.Cart) { m.mergeLine(c, line) })
		} else {
			m.adopt(seq, remote)
		}
	} else {
		m.applyLocal(func(c *domain.Cart) { m.mergeLine(c, line) })
	}
	m.persist(ctx)
}

// RemoveItem filters out the line for productID. Removing an absent product
// is a no-op.
func (m *Manager) RemoveItem(ctx context.Context, productID string) {
	seq := m.nextSeq()
	if m.isAuthenticated() {
		remote, err := m.remote.RemoveItem(ctx, productID)
		if err != nil {
			m.logger.Warn().Err(err).Str("product_id", productID).Msg("remote remove failed, applying locally")
			m.applyLocal(func(c *domain.Cart) { removeLine(c, productID) })
		} else {
			m.adopt(seq, remote)
		}
	} else {
		m.applyLocal(func(c *domain.Cart) { removeLine(c, productID) })
	}
	m.persist(ctx)
}

// UpdateQuantity sets the line's quantity; zero or negative behaves exactly
// like RemoveItem. The local mutation is applied first and is not rolled back
// when the remote update fails; local state stays authoritative for
// responsiveness.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		m.RemoveItem(ctx, productID)
		return
	}

	seq := m.nextSeq()
	m.applyLocal(func(c *domain.Cart) {
		if i := c.FindLine(productID); i >= 0 {
			c.Lines[i].Quantity = quantity
		}
	})
	m.persist(ctx)

	if m.isAuthenticated() {
		remote, err := m.remote.UpdateItem(ctx, productID, quantity)
		if err != nil {
			m.logger.Warn().Err(err).Str("product_id", productID).Msg("remote quantity update failed")
			return
		}
		if m.adopt(seq, remote) {
			m.persist(ctx)
		}
	}
}

// Clear resets the cart to empty. For authenticated identities a server-side
// clear is requested; failure still clears locally.
func (m *Manager) Clear(ctx context.Context) {
	m.nextSeq()
	if m.isAuthenticated() {
		if _, err := m.remote.Clear(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("remote clear failed, clearing locally")
		}
	}
	m.applyLocal(func(c *domain.Cart) { c.Lines = nil })
	m.persist(ctx)
}

// ApplyCoupon validates code against the registry and applies the result. An
// unknown code returns domain.ErrInvalidCoupon and leaves the currently
// applied coupon untouched.
func (m *Manager) ApplyCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	if m.coupons == nil {
		return nil, domain.ErrInvalidCoupon
	}
	c, err := m.coupons.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.applied = c
	m.mu.Unlock()
	return c, nil
}

// RemoveCoupon drops the applied coupon, if any.
func (m *Manager) RemoveCoupon() {
	m.mu.Lock()
	m.applied = nil
	m.mu.Unlock()
}

// AppliedCoupon returns a copy of the applied coupon, or nil.
func (m *Manager) AppliedCoupon() *domain.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applied == nil {
		return nil
	}
	c := *m.applied
	return &c
}

// Snapshot returns an immutable copy of the current cart.
func (m *Manager) Snapshot() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

// Quote computes the price breakdown for the current cart and coupon.
func (m *Manager) Quote() pricing.Result {
	m.mu.Lock()
	lines := make([]domain.CartLine, len(m.cart.Lines))
	copy(lines, m.cart.Lines)
	applied := m.applied
	m.mu.Unlock()
	return pricing.Compute(lines, applied, m.policy)
}

// Identity returns the identity the engine was last initialized with.
func (m *Manager) Identity() domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

func (m *Manager) isAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity.IsAuthenticated() && m.remote != nil
}

// nextSeq reserves a sequence number for an operation. Remote completions are
// only adopted while their sequence number is still the latest, so a slow
// response cannot overwrite a newer local mutation.
func (m *Manager) nextSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

func (m *Manager) applyLocal(mutate func(*domain.Cart)) {
	m.mu.Lock()
	mutate(&m.cart)
	m.cart.Version++
	m.mu.Unlock()
}

// adopt replaces the local cart with the server's view, unless the response
// is stale or the local copy has already moved further ahead.
func (m *Manager) adopt(seq uint64, remote *domain.Cart) bool {
	if remote == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		m.logger.Debug().Uint64("seq", seq).Uint64("latest", m.seq).Msg("discarding stale remote cart response")
		return false
	}
	adopted := remote.Clone()
	if m.cart.Version > adopted.Version {
		adopted.Version = m.cart.Version
	}
	m.cart = adopted
	return true
}

func (m *Manager) persist(ctx context.Context) {
	m.mu.Lock()
	snapshot := m.cart.Clone()
	m.mu.Unlock()
	if err := m.store.Save(ctx, snapshot); err != nil {
		m.logger.Warn().Err(err).Msg("persist local cart")
	}
}

func (m *Manager) mergeLine(c *domain.Cart, line domain.CartLine) {
	if i := c.FindLine(line.ProductID); i >= 0 {
		if m.addPolicy == AddAccumulate {
			c.Lines[i].Quantity += line.Quantity
		} else {
			c.Lines[i].Quantity = line.Quantity
		}
		return
	}
	c.Lines = append(c.Lines, line)
}

func removeLine(c *domain.Cart, productID string) {
	if i := c.FindLine(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

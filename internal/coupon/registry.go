package coupon

import (
	"context"
	"strings"
	"sync"

	"storefront/internal/domain"
)

// Registry resolves coupon codes to discount rules. Lookups are
// case-insensitive; an unknown code yields domain.ErrInvalidCoupon.
type Registry interface {
	Lookup(ctx context.Context, code string) (*domain.Coupon, error)
}

// Normalize canonicalizes a coupon code for lookup and storage.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StaticRegistry is an in-memory registry built at construction time. It is
// always explicitly constructed and injected; there is no package-level
// instance.
type StaticRegistry struct {
	mu      sync.RWMutex
	coupons map[string]domain.Coupon
}

// NewStatic builds a registry from the given coupons, keyed by normalized code.
func NewStatic(coupons ...domain.Coupon) *StaticRegistry {
	m := make(map[string]domain.Coupon, len(coupons))
	for _, c := range coupons {
		c.Code = Normalize(c.Code)
		m[c.Code] = c
	}
	return &StaticRegistry{coupons: m}
}

func (r *StaticRegistry) Lookup(_ context.Context, code string) (*domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coupons[Normalize(code)]
	if !ok {
		return nil, domain.ErrInvalidCoupon
	}
	return &c, nil
}

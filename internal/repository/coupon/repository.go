package coupon

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the server-side coupon registry. Lookup satisfies
// coupon.Registry so services can swap the static in-memory registry for the
// persisted one.
type Repository interface {
	Lookup(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Upsert(ctx context.Context, c domain.Coupon) error
}

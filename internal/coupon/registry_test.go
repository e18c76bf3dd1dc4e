package coupon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestStaticLookupCaseInsensitive(t *testing.T) {
	reg := NewStatic(domain.Coupon{Code: "wellness20", Kind: domain.DiscountPercentage, Value: 20})

	for _, code := range []string{"WELLNESS20", "wellness20", "  Wellness20 "} {
		c, err := reg.Lookup(context.Background(), code)
		require.NoError(t, err, "code %q", code)
		assert.Equal(t, "WELLNESS20", c.Code)
		assert.Equal(t, domain.DiscountPercentage, c.Kind)
		assert.Equal(t, int64(20), c.Value)
	}
}

func TestStaticLookupUnknownCode(t *testing.T) {
	reg := NewStatic(domain.Coupon{Code: "WELLNESS20", Kind: domain.DiscountPercentage, Value: 20})

	c, err := reg.Lookup(context.Background(), "BOGUS")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, domain.ErrInvalidCoupon)
}

func TestStaticLookupEmptyRegistry(t *testing.T) {
	reg := NewStatic()

	_, err := reg.Lookup(context.Background(), "ANY")
	assert.ErrorIs(t, err, domain.ErrInvalidCoupon)
}

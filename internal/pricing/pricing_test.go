package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func twoAt200() []domain.CartLine {
	return []domain.CartLine{
		{ProductID: "p1", Name: "Wellness Kit", UnitPriceCents: 20000, Quantity: 2},
	}
}

func TestComputeNoCoupon(t *testing.T) {
	got := Compute(twoAt200(), nil, DefaultPolicy())

	require.Equal(t, int64(40000), got.SubtotalCents)
	assert.Equal(t, int64(0), got.DiscountCents)
	assert.Equal(t, int64(40000), got.TaxableCents)
	assert.Equal(t, int64(5000), got.ShippingCents)
	assert.Equal(t, int64(7200), got.TaxCents)
	assert.Equal(t, int64(52200), got.TotalCents)
}

func TestComputePercentageCoupon(t *testing.T) {
	coupon := &domain.Coupon{Code: "WELLNESS20", Kind: domain.DiscountPercentage, Value: 20}
	got := Compute(twoAt200(), coupon, DefaultPolicy())

	assert.Equal(t, int64(40000), got.SubtotalCents)
	assert.Equal(t, int64(8000), got.DiscountCents)
	assert.Equal(t, int64(32000), got.TaxableCents)
	assert.Equal(t, int64(5000), got.ShippingCents, "32000 is below the free shipping threshold")
	assert.Equal(t, int64(5760), got.TaxCents)
	assert.Equal(t, int64(42760), got.TotalCents)
}

func TestComputeFixedCouponClampedToSubtotal(t *testing.T) {
	lines := []domain.CartLine{{ProductID: "p1", UnitPriceCents: 1000, Quantity: 1}}
	coupon := &domain.Coupon{Code: "FLAT100", Kind: domain.DiscountFixed, Value: 10000}

	got := Compute(lines, coupon, DefaultPolicy())

	assert.Equal(t, int64(1000), got.DiscountCents, "discount never exceeds subtotal")
	assert.Equal(t, int64(0), got.TaxableCents)
	assert.Equal(t, int64(0), got.TaxCents)
	assert.Equal(t, got.ShippingCents, got.TotalCents)
}

func TestComputeFreeShippingAboveThreshold(t *testing.T) {
	lines := []domain.CartLine{{ProductID: "p1", UnitPriceCents: 25000, Quantity: 2}}
	got := Compute(lines, nil, DefaultPolicy())

	assert.Equal(t, int64(50000), got.TaxableCents)
	assert.Equal(t, int64(0), got.ShippingCents)
}

func TestComputeThresholdIsExclusive(t *testing.T) {
	lines := []domain.CartLine{{ProductID: "p1", UnitPriceCents: 49900, Quantity: 1}}
	got := Compute(lines, nil, DefaultPolicy())

	assert.Equal(t, int64(5000), got.ShippingCents, "exactly at threshold still pays shipping")
}

func TestComputeEmptyCart(t *testing.T) {
	got := Compute(nil, nil, DefaultPolicy())

	assert.Equal(t, int64(0), got.SubtotalCents)
	assert.Equal(t, int64(5000), got.ShippingCents)
	assert.Equal(t, int64(5000), got.TotalCents)
}

func TestComputeIsPure(t *testing.T) {
	coupon := &domain.Coupon{Code: "WELLNESS20", Kind: domain.DiscountPercentage, Value: 20}
	first := Compute(twoAt200(), coupon, DefaultPolicy())
	second := Compute(twoAt200(), coupon, DefaultPolicy())

	assert.Equal(t, first, second)
}

func TestComputeTaxRounding(t *testing.T) {
	// 3 at 0.37: taxable 111 cents, 111*0.18 = 19.98 -> 20
	lines := []domain.CartLine{{ProductID: "p1", UnitPriceCents: 37, Quantity: 3}}
	policy := Policy{
		FreeShippingThresholdCents: 49900,
		FlatShippingFeeCents:       5000,
		TaxRate:                    decimal.NewFromFloat(0.18),
	}

	got := Compute(lines, nil, policy)
	assert.Equal(t, int64(20), got.TaxCents)
}

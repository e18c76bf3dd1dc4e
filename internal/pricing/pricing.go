package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Policy holds the shipping and tax constants for a deployment. One canonical
// policy per deployment; the two are never mixed.
type Policy struct {
	// Shipping is free strictly above the threshold, otherwise the flat fee
	// applies.
	FreeShippingThresholdCents int64
	FlatShippingFeeCents       int64
	// TaxRate is applied to the discounted subtotal, e.g. 0.18 for 18% GST.
	TaxRate decimal.Decimal
}

// DefaultPolicy returns the canonical deployment policy: free shipping above
// 499.00, flat fee 50.00, 18% tax.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThresholdCents: 49900,
		FlatShippingFeeCents:       5000,
		TaxRate:                    decimal.NewFromFloat(0.18),
	}
}

// Result is the derived price breakdown for a cart. It is recomputed from
// inputs on every call and never persisted.
type Result struct {
	SubtotalCents int64 `json:"subtotalCents"`
	DiscountCents int64 `json:"discountCents"`
	TaxableCents  int64 `json:"taxableCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	TotalCents    int64 `json:"totalCents"`
}

// Compute derives the price breakdown for the given lines, optional coupon
// and policy. It is a pure function: no I/O, no hidden state.
//
// The discount is clamped so it never exceeds the subtotal, which keeps the
// taxable amount non-negative. Tax is rounded half away from zero to whole
// cents.
func Compute(lines []domain.CartLine, coupon *domain.Coupon, policy Policy) Result {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.TotalCents()
	}

	discount := discountCents(subtotal, coupon)
	if discount > subtotal {
		discount = subtotal
	}
	taxable := subtotal - discount

	shipping := policy.FlatShippingFeeCents
	if taxable > policy.FreeShippingThresholdCents {
		shipping = 0
	}

	tax := decimal.NewFromInt(taxable).Mul(policy.TaxRate).Round(0).IntPart()

	return Result{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TaxableCents:  taxable,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    taxable + shipping + tax,
	}
}

func discountCents(subtotal int64, coupon *domain.Coupon) int64 {
	if coupon == nil {
		return 0
	}
	switch coupon.Kind {
	case domain.DiscountPercentage:
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(coupon.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case domain.DiscountFixed:
		if coupon.Value > subtotal {
			return subtotal
		}
		return coupon.Value
	default:
		return 0
	}
}

package domain

// DiscountKind distinguishes percentage coupons from fixed-amount coupons.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Coupon is a named discount rule applied to a cart's subtotal. Codes are
// case-insensitive; at most one coupon applies to a cart at a time.
// Value is whole percent for percentage coupons and cents for fixed ones.
type Coupon struct {
	Code  string       `json:"code"`
	Kind  DiscountKind `json:"kind"`
	Value int64        `json:"value"`
}

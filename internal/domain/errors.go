package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCoupon indicates the coupon code is unknown or inactive.
	ErrInvalidCoupon = errors.New("invalid coupon")
)

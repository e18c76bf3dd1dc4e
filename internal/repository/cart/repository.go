package cart

import (
	"context"

	"storefront/internal/domain"
)

// Owner identifies who a cart belongs to: exactly one of CustomerID or
// AnonymousID is set.
type Owner struct {
	CustomerID  *string
	AnonymousID *string
}

// Repository persists carts and their lines. Every mutation bumps the cart's
// version counter.
type Repository interface {
	// GetOrCreateActive returns the owner's active cart, creating an empty
	// one when none exists.
	GetOrCreateActive(ctx context.Context, owner Owner, currency string) (*domain.Cart, error)
	// GetActive returns the owner's active cart or domain.ErrNotFound.
	GetActive(ctx context.Context, owner Owner) (*domain.Cart, error)
	// PutLine inserts the line or, when one exists for the product, replaces
	// its quantity with the incoming one.
	PutLine(ctx context.Context, cartID string, line domain.CartLine) error
	// SetLineQuantity updates the line's quantity; zero or below deletes it.
	// Returns domain.ErrNotFound when no such line exists and quantity > 0.
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	// RemoveLine deletes the line for productID; removing an absent line is
	// not an error.
	RemoveLine(ctx context.Context, cartID, productID string) error
	// ClearLines removes every line from the cart.
	ClearLines(ctx context.Context, cartID string) error
	// MergeAnonymousIntoCustomer folds the anonymous session's active cart
	// into the customer's. Customer lines win per product; anonymous-only
	// lines are carried over. The anonymous cart is retired afterwards.
	MergeAnonymousIntoCustomer(ctx context.Context, anonymousID, customerID, currency string) error
}

package token

import (
	"context"
	"time"
)

// Token is an opaque bearer credential for either a customer or an anonymous
// session; exactly one of CustomerID and AnonymousID is set.
type Token struct {
	Token       string
	CustomerID  *string
	AnonymousID *string
	Kind        string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

type Repository interface {
	// Create inserts the token; a colliding value yields
	// domain.ErrAlreadyExists.
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}

package customer

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create inserts the customer; a duplicate email yields
	// domain.ErrAlreadyExists.
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

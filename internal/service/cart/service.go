package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// Service implements the server-side cart operations, scoped to a cart owner
// (customer or anonymous session).
type Service struct {
	repo     cartRepo
	products productRepo
	currency string
}

type cartRepo interface {
	GetOrCreateActive(ctx context.Context, owner cartrepo.Owner, currency string) (*domain.Cart, error)
	GetActive(ctx context.Context, owner cartrepo.Owner) (*domain.Cart, error)
	PutLine(ctx context.Context, cartID string, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	ClearLines(ctx context.Context, cartID string) error
	MergeAnonymousIntoCustomer(ctx context.Context, anonymousID, customerID, currency string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, products productRepo, currency string) *Service {
	return &Service{repo: repo, products: products, currency: currency}
}

// Get returns the owner's active cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, owner cartrepo.Owner) (*domain.Cart, error) {
	return s.repo.GetOrCreateActive(ctx, owner, s.currency)
}

// AddItem snapshots the product into the owner's cart. Adding a product that
// is already in the cart replaces the line's quantity with the incoming one.
func (s *Service) AddItem(ctx context.Context, owner cartrepo.Owner, productID string, quantity int) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("productId required")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if s.products == nil {
		return nil, errors.New("product repository unavailable")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, err
	}

	cart, err := s.repo.GetOrCreateActive(ctx, owner, s.currency)
	if err != nil {
		return nil, err
	}

	line := domain.CartLine{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents,
		Quantity:       quantity,
		ImageRef:       product.ImageURL,
	}
	if err := s.repo.PutLine(ctx, cart.ID, line); err != nil {
		return nil, err
	}
	return s.repo.GetActive(ctx, owner)
}

// UpdateItem sets a line's quantity; zero or below removes the line.
func (s *Service) UpdateItem(ctx context.Context, owner cartrepo.Owner, productID string, quantity int) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("productId required")
	}

	cart, err := s.repo.GetOrCreateActive(ctx, owner, s.currency)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLineQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetActive(ctx, owner)
}

// RemoveItem deletes the line for productID; removing an absent product
// leaves the cart unchanged.
func (s *Service) RemoveItem(ctx context.Context, owner cartrepo.Owner, productID string) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("productId required")
	}

	cart, err := s.repo.GetOrCreateActive(ctx, owner, s.currency)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLine(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.repo.GetActive(ctx, owner)
}

// Clear empties the owner's cart.
func (s *Service) Clear(ctx context.Context, owner cartrepo.Owner) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreateActive(ctx, owner, s.currency)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ClearLines(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.repo.GetActive(ctx, owner)
}

// MergeOnLogin folds the anonymous session's cart into the customer's cart.
// Called once when a session authenticates; conflicts resolve in favor of the
// customer cart, anonymous-only lines carry over.
func (s *Service) MergeOnLogin(ctx context.Context, anonymousID, customerID string) error {
	if strings.TrimSpace(anonymousID) == "" || strings.TrimSpace(customerID) == "" {
		return nil
	}
	return s.repo.MergeAnonymousIntoCustomer(ctx, anonymousID, customerID, s.currency)
}

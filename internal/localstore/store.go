package localstore

import (
	"context"
	"encoding/json"

	"storefront/internal/domain"
)

// Store abstracts the local durable key-value store the engine caches carts
// in. Load returns (nil, nil) when no cart is persisted or the persisted
// value cannot be parsed; a missing or corrupt local cart is never an error,
// it just means starting from empty.
type Store interface {
	Save(ctx context.Context, cart domain.Cart) error
	Load(ctx context.Context) (*domain.Cart, error)
}

// persistedCart is the wire format for locally cached carts.
type persistedCart struct {
	CartItems []domain.CartLine `json:"cartItems"`
	Version   int64             `json:"version,omitempty"`
}

func encodeCart(cart domain.Cart) ([]byte, error) {
	return json.Marshal(persistedCart{CartItems: cart.Lines, Version: cart.Version})
}

func decodeCart(raw []byte) (*domain.Cart, error) {
	var p persistedCart
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	lines := p.CartItems
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return &domain.Cart{Lines: lines, Version: p.Version}, nil
}

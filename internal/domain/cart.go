package domain

import "time"

// Cart is the ordered set of product lines a session intends to purchase.
// Version is a monotonic counter bumped on every mutation; when local and
// remote copies disagree, the higher version wins.
type Cart struct {
	ID          string     `json:"id,omitempty"`
	CustomerID  *string    `json:"customerId,omitempty"`
	AnonymousID *string    `json:"-"`
	Currency    string     `json:"currency,omitempty"`
	Version     int64      `json:"version"`
	State       string     `json:"state,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	Lines       []CartLine `json:"lineItems"`
}

// CartLine holds one product in a cart. Price and display data are captured
// at add time and never re-fetched. At most one line per ProductID.
type CartLine struct {
	ProductID      string    `json:"productId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int       `json:"quantity"`
	ImageRef       string    `json:"imageRef,omitempty"`
	AddedAt        time.Time `json:"addedAt,omitempty"`
}

// TotalCents is the line extension: unit price times quantity.
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// FindLine returns the index of the line for productID, or -1.
func (c *Cart) FindLine(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so readers never alias the owner's line slice.
func (c Cart) Clone() Cart {
	out := c
	out.Lines = make([]CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

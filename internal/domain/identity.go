package domain

// Identity describes who owns the current session. A session is anonymous
// until login; logout never happens from the cart's point of view (the guest
// cart simply persists locally).
type Identity struct {
	CustomerID  string
	AnonymousID string
	Token       string
}

// Anonymous builds a guest identity for the given session id.
func Anonymous(anonymousID string) Identity {
	return Identity{AnonymousID: anonymousID}
}

// Authenticated builds a customer identity carrying its bearer token.
func Authenticated(customerID, token string) Identity {
	return Identity{CustomerID: customerID, Token: token}
}

// IsAuthenticated reports whether the identity belongs to a logged-in customer.
func (i Identity) IsAuthenticated() bool {
	return i.CustomerID != ""
}

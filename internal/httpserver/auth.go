package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartrepo "storefront/internal/repository/cart"
)

const ctxOwnerKey = "cartOwner"

// requireOwner resolves the bearer token to a cart owner or rejects the
// request.
func (h *handlers) requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := h.resolveOwner(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set(ctxOwnerKey, owner)
		c.Next()
	}
}

// optionalOwner resolves the bearer token when present but never rejects;
// login uses it so a guest session's cart can be merged after authentication.
func (h *handlers) optionalOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if owner, ok := h.resolveOwner(c); ok {
			c.Set(ctxOwnerKey, owner)
		}
		c.Next()
	}
}

func (h *handlers) resolveOwner(c *gin.Context) (cartrepo.Owner, bool) {
	raw := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if token == "" || token == raw {
		return cartrepo.Owner{}, false
	}

	ctx := c.Request.Context()
	if customerID, err := h.deps.CustomerSvc.LookupByToken(ctx, token); err == nil {
		return cartrepo.Owner{CustomerID: &customerID}, true
	}
	if anonymousID, err := h.deps.AnonSvc.LookupByToken(ctx, token); err == nil {
		return cartrepo.Owner{AnonymousID: &anonymousID}, true
	}
	return cartrepo.Owner{}, false
}

func ownerFromContext(c *gin.Context) (cartrepo.Owner, bool) {
	v, ok := c.Get(ctxOwnerKey)
	if !ok {
		return cartrepo.Owner{}, false
	}
	owner, ok := v.(cartrepo.Owner)
	return owner, ok
}

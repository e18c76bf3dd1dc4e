package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type quoteRequest struct {
	CouponCode string `json:"couponCode"`
}

type quoteResponse struct {
	Cart    *domain.Cart   `json:"cart"`
	Coupon  *domain.Coupon `json:"coupon,omitempty"`
	Pricing pricing.Result `json:"pricing"`
}

// quote prices the caller's current cart, optionally under a coupon. An
// unknown coupon code is a client error, not a silently ignored one.
func (h *handlers) quote(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req quoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}
	}

	cart, err := h.deps.CartSvc.Get(c.Request.Context(), owner)
	if err != nil {
		h.serverError(c, err, "quote cart")
		return
	}

	var applied *domain.Coupon
	if req.CouponCode != "" {
		if h.deps.Coupons == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid coupon"})
			return
		}
		applied, err = h.deps.Coupons.Lookup(c.Request.Context(), req.CouponCode)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoupon) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid coupon"})
				return
			}
			h.serverError(c, err, "quote coupon lookup")
			return
		}
	}

	c.JSON(http.StatusOK, quoteResponse{
		Cart:    cart,
		Coupon:  applied,
		Pricing: pricing.Compute(cart.Lines, applied, h.deps.Policy),
	})
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/coupon"
	"storefront/internal/domain"
)

func (h *handlers) listProducts(c *gin.Context) {
	if h.deps.ProductSvc == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "catalog unavailable"})
		return
	}
	products, err := h.deps.ProductSvc.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func (h *handlers) getProduct(c *gin.Context) {
	if h.deps.ProductSvc == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "catalog unavailable"})
		return
	}
	product, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.serverError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handlers) getCoupon(c *gin.Context) {
	if h.deps.Coupons == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid coupon"})
		return
	}
	found, err := h.deps.Coupons.Lookup(c.Request.Context(), coupon.Normalize(c.Param("code")))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoupon) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid coupon"})
			return
		}
		h.serverError(c, err, "lookup coupon")
		return
	}
	c.JSON(http.StatusOK, found)
}

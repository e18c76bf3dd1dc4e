package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), owner)
	if err != nil {
		h.serverError(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) addCartItem(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.deps.CartSvc.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		switch err.Error() {
		case "product not found":
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case "productId required", "quantity must be positive":
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.serverError(c, err, "add cart item")
		}
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) updateCartItem(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}

	cart, err := h.deps.CartSvc.UpdateItem(c.Request.Context(), owner, c.Param("productId"), req.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "line not found"})
			return
		}
		h.serverError(c, err, "update cart item")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cart, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), owner, c.Param("productId"))
	if err != nil {
		h.serverError(c, err, "remove cart item")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cart, err := h.deps.CartSvc.Clear(c.Request.Context(), owner)
	if err != nil {
		h.serverError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) serverError(c *gin.Context, err error, op string) {
	h.logger.Error().Err(err).Str("op", op).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

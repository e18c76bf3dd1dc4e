package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
)

// SignupInput mirrors the signup payload accepted by the customer service.
type SignupInput = customersvc.SignupInput

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) createSession(c *gin.Context) {
	token, anonymousID, err := h.deps.AnonSvc.Issue(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "issue session")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":       token,
		"anonymousId": anonymousID,
	})
}

func (h *handlers) signup(c *gin.Context) {
	var in SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	created, err := h.deps.CustomerSvc.Signup(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// login authenticates a customer and, when the request carried a guest
// session token, merges that session's cart into the customer's cart.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	cust, token, err := h.deps.CustomerSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, customersvc.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.serverError(c, err, "login")
		return
	}

	if owner, ok := ownerFromContext(c); ok && owner.AnonymousID != nil {
		if err := h.deps.CartSvc.MergeOnLogin(c.Request.Context(), *owner.AnonymousID, cust.ID); err != nil {
			// The customer is authenticated either way; losing the merge is
			// recoverable, failing the login is not.
			h.logger.Warn().Err(err).Str("customer_id", cust.ID).Msg("guest cart merge failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"customer": cust,
	})
}

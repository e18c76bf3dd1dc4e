package httpserver

import (
	"context"
	"errors"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront/internal/coupon"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
)

// CartService is the server-side cart surface consumed by the handlers.
type CartService interface {
	Get(ctx context.Context, owner cartrepo.Owner) (*domain.Cart, error)
	AddItem(ctx context.Context, owner cartrepo.Owner, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, owner cartrepo.Owner, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, owner cartrepo.Owner, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, owner cartrepo.Owner) (*domain.Cart, error)
	MergeOnLogin(ctx context.Context, anonymousID, customerID string) error
}

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type CustomerService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, error)
	LookupByToken(ctx context.Context, token string) (string, error)
}

type AnonymousService interface {
	Issue(ctx context.Context) (token, anonymousID string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
}

// Deps carries everything the routes need.
type Deps struct {
	CartSvc     CartService
	ProductSvc  ProductService
	CustomerSvc CustomerService
	AnonSvc     AnonymousService
	Coupons     coupon.Registry
	Policy      pricing.Policy
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.CustomerSvc == nil || deps.AnonSvc == nil {
		return nil, errors.New("httpserver: cart, customer and anonymous services required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) == 1 && deps.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = deps.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	v1 := router.Group("/v1")
	v1.POST("/sessions", h.createSession)
	v1.POST("/signup", h.signup)
	v1.POST("/login", h.optionalOwner(), h.login)

	v1.GET("/products", h.listProducts)
	v1.GET("/products/:id", h.getProduct)
	v1.GET("/coupons/:code", h.getCoupon)

	authed := v1.Group("", h.requireOwner())
	authed.GET("/cart", h.getCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.PUT("/cart/items/:productId", h.updateCartItem)
	authed.DELETE("/cart/items/:productId", h.removeCartItem)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/quote", h.quote)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger zerolog.Logger
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

package api

import (
	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Handlers    *Handlers
	JWTService  *auth.JWTService
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := cfg.Handlers

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware())
	}

	r.GET("/health", h.Health)
	r.POST("/sessions", h.StartSession)

	// Catalog reads that do not need a session
	r.GET("/products/search", h.SearchProducts)
	r.GET("/products/facets", h.GetFacets)
	r.GET("/products/:id", h.GetProduct)

	shopper := r.Group("/", middleware.SessionAuth(cfg.JWTService))
	{
		shopper.GET("/products", h.ListProducts)

		shopper.GET("/filters", h.GetFilters)
		shopper.PATCH("/filters", h.ChangeFilter)
		shopper.DELETE("/filters", h.ResetFilters)

		shopper.GET("/cart", h.GetCart)
		shopper.DELETE("/cart", h.ClearCart)
		shopper.POST("/cart/items", h.AddToCart)
		shopper.PUT("/cart/items/:id", h.UpdateQuantity)
		shopper.DELETE("/cart/items/:id", h.RemoveFromCart)
		shopper.POST("/cart/items/:id/wishlist", h.MoveToWishlist)

		shopper.GET("/wishlist", h.GetWishlist)
		shopper.DELETE("/wishlist/:id", h.RemoveFromWishlist)
	}

	admin := r.Group("/admin", middleware.TokenAuth(cfg.JWTService), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/carts", h.ListCarts)
		admin.GET("/carts/:session", h.GetProjectedCart)
	}

	return r
}

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	jwtService   *auth.JWTService
	priceCeiling int
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, jwtService *auth.JWTService, priceCeiling int, logger *zap.Logger) *Handlers {
	if priceCeiling <= 0 {
		priceCeiling = catalog.DefaultPriceCeiling
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		jwtService:   jwtService,
		priceCeiling: priceCeiling,
		logger:       logger.Named("api"),
	}
}

type sessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   session.Snapshot `json:"session"`
}

// Session Handlers

func (h *Handlers) StartSession(c *gin.Context) {
	snap, err := h.cmdHandler.StartSession(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateSessionToken(snap.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{Token: token, ExpiresAt: expiresAt, Session: snap})
}

// Product Handlers

func (h *Handlers) ListProducts(c *gin.Context) {
	list, err := h.queryHandler.ListProducts(c.Request.Context(), middleware.GetSessionID(c), c.Query("sort"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SearchProducts filters the catalog by query parameters alone, without a
// session.
func (h *Handlers) SearchProducts(c *gin.Context) {
	criteria, err := h.criteriaFromQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.queryHandler.SearchProducts(criteria, c.Query("sort")))
}

func (h *Handlers) criteriaFromQuery(c *gin.Context) (catalog.Criteria, error) {
	criteria := catalog.DefaultCriteria(h.priceCeiling)
	criteria.Search = c.Query("search")

	for _, v := range c.QueryArray("category") {
		criteria.Categories = append(criteria.Categories, strings.Split(v, ",")...)
	}

	var err error
	parse := func(key string, set func(string) error) {
		if v, ok := c.GetQuery(key); ok && err == nil {
			if perr := set(v); perr != nil {
				err = errors.Join(catalog.ErrInvalidCriteria, perr)
			}
		}
	}
	parse("min_price", func(v string) (e error) { criteria.PriceRange.Min, e = cast.ToIntE(v); return })
	parse("max_price", func(v string) (e error) { criteria.PriceRange.Max, e = cast.ToIntE(v); return })
	parse("min_rating", func(v string) (e error) { criteria.MinRating, e = cast.ToFloat64E(v); return })
	parse("in_stock", func(v string) (e error) { criteria.InStockOnly, e = cast.ToBoolE(v); return })
	parse("on_sale", func(v string) (e error) { criteria.ShowSaleItems, e = cast.ToBoolE(v); return })
	if err != nil {
		return catalog.Criteria{}, err
	}

	return catalog.NewCriteria(criteria)
}

func (h *Handlers) GetFacets(c *gin.Context) {
	c.JSON(http.StatusOK, h.queryHandler.Facets())
}

func (h *Handlers) GetProduct(c *gin.Context) {
	p, ok := h.queryHandler.GetProduct(c.Param("id"))
	if !ok {
		h.respondError(c, product.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Filter Handlers

func (h *Handlers) GetFilters(c *gin.Context) {
	snap, err := h.queryHandler.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap.Criteria)
}

func (h *Handlers) ChangeFilter(c *gin.Context) {
	var cmd command.ChangeFilter
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.SessionID = middleware.GetSessionID(c)

	snap, err := h.cmdHandler.ChangeFilter(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap.Criteria)
}

func (h *Handlers) ResetFilters(c *gin.Context) {
	snap, err := h.cmdHandler.ResetFilters(c.Request.Context(), command.ResetFilters{SessionID: middleware.GetSessionID(c)})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap.Criteria)
}

// Cart Handlers

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"max=99"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" binding:"max=99"`
}

func (h *Handlers) GetCart(c *gin.Context) {
	snap, err := h.queryHandler.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	h.respondSnapshot(c, snap, err)
}

func (h *Handlers) AddToCart(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.cmdHandler.AddToCart(c.Request.Context(), command.AddToCart{
		SessionID: middleware.GetSessionID(c),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	h.respondSnapshot(c, snap, err)
}

func (h *Handlers) UpdateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.cmdHandler.UpdateQuantity(c.Request.Context(), command.UpdateQuantity{
		SessionID: middleware.GetSessionID(c),
		ProductID: c.Param("id"),
		Quantity:  req.Quantity,
	})
	h.respondSnapshot(c, snap, err)
}

func (h *Handlers) RemoveFromCart(c *gin.Context) {
	snap, err := h.cmdHandler.RemoveFromCart(c.Request.Context(), command.RemoveFromCart{
		SessionID: middleware.GetSessionID(c),
		ProductID: c.Param("id"),
	})
	h.respondSnapshot(c, snap, err)
}

func (h *Handlers) MoveToWishlist(c *gin.Context) {
	snap, err := h.cmdHandler.MoveToWishlist(c.Request.Context(), command.MoveToWishlist{
		SessionID: middleware.GetSessionID(c),
		ProductID: c.Param("id"),
	})
	h.respondSnapshot(c, snap, err)
}

func (h *Handlers) ClearCart(c *gin.Context) {
	snap, err := h.cmdHandler.ClearCart(c.Request.Context(), command.ClearCart{SessionID: middleware.GetSessionID(c)})
	h.respondSnapshot(c, snap, err)
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(c *gin.Context) {
	products, err := h.queryHandler.GetWishlist(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	snap, err := h.cmdHandler.RemoveFromWishlist(c.Request.Context(), command.RemoveFromWishlist{
		SessionID: middleware.GetSessionID(c),
		ProductID: c.Param("id"),
	})
	h.respondSnapshot(c, snap, err)
}

// Admin Handlers

func (h *Handlers) ListCarts(c *gin.Context) {
	carts, err := h.queryHandler.ListCarts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"carts": carts, "total": len(carts)})
}

func (h *Handlers) GetProjectedCart(c *gin.Context) {
	cart, err := h.queryHandler.GetProjectedCart(c.Request.Context(), c.Param("session"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"catalog": h.queryHandler.CatalogStatus(),
	})
}

// Helper functions

func (h *Handlers) respondSnapshot(c *gin.Context, snap session.Snapshot, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, product.ErrOutOfStock), errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	case session.IsInvalidInput(err), errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// CartHandler serves the buyer's server-side cart. The cart is keyed by the
// marketplace user ID, which the storefront sends explicitly.
type CartHandler struct {
	cart ports.CartStore
}

func NewCartHandler(cart ports.CartStore) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart handles GET /v1/cart?buyer_id=...
func (h *CartHandler) GetCart(c echo.Context) error {
	buyerID := c.QueryParam("buyer_id")
	if buyerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "buyer_id is required")
	}

	items, err := h.cart.Items(c.Request().Context(), buyerID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return c.JSON(http.StatusOK, cartResponse{Items: items})
}

// SaveCart handles PUT /v1/cart?buyer_id=... and replaces the whole cart.
// An empty item list clears it.
func (h *CartHandler) SaveCart(c echo.Context) error {
	buyerID := c.QueryParam("buyer_id")
	if buyerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "buyer_id is required")
	}

	var req saveCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	now := time.Now().UTC()
	items := make([]domain.CartLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		method := domain.DeliveryMethod(item.DeliveryMethod)
		if method == "" {
			method = domain.DeliveryShipping
		}
		items = append(items, domain.CartLineItem{
			ListingID:      item.ListingID,
			Title:          item.Title,
			Quantity:       item.Quantity,
			DeliveryMethod: method,
			AddedAt:        now,
		})
	}

	if err := h.cart.Save(c.Request().Context(), buyerID, items); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{Items: items})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmfed/delivery-system/internal/api/metrics"
	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// CheckoutHandler drives checkout runs and serves their archived history.
type CheckoutHandler struct {
	checkout ports.CheckoutService
	runs     ports.CheckoutRunRepository
}

func NewCheckoutHandler(checkout ports.CheckoutService, runs ports.CheckoutRunRepository) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, runs: runs}
}

// Checkout handles POST /v1/checkout. The response is always 200 with the
// terminal run: partial failures and aborts are run outcomes the storefront
// renders per item, not HTTP errors.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.CheckoutInput{
		BuyerID:         req.BuyerID,
		UserToken:       token,
		PaymentMethodID: req.PaymentMethodID,
		ProcessAlias:    req.ProcessAlias,
	}
	if req.Card != nil {
		in.Card = &ports.CardDetails{Token: req.Card.Token}
	}
	if req.ShippingAddress != nil {
		addr := req.ShippingAddress.toDomain()
		in.ShippingAddress = &addr
	}
	if req.DeliveryFee != nil {
		in.DeliveryFee = &domain.RouteQuote{
			TotalDistanceMiles: req.DeliveryFee.TotalDistanceMiles,
			RateCentsPerMile:   req.DeliveryFee.RateCentsPerMile,
			TotalFeeCents:      req.DeliveryFee.TotalFeeCents,
		}
	}

	run, err := h.checkout.Checkout(c.Request().Context(), in)
	if err != nil {
		return err
	}

	metrics.CheckoutRunsTotal.WithLabelValues(string(run.State)).Inc()
	for _, res := range run.Results {
		if res.Success {
			metrics.CheckoutItemsTotal.WithLabelValues("success").Inc()
		} else {
			metrics.CheckoutItemsTotal.WithLabelValues("failure").Inc()
		}
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		RunID:         run.ID,
		State:         string(run.State),
		FailureReason: run.FailureReason,
		Results:       run.Results,
	})
}

// ListRuns handles GET /v1/checkout/runs?buyer_id=...
func (h *CheckoutHandler) ListRuns(c echo.Context) error {
	buyerID := c.QueryParam("buyer_id")
	if buyerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "buyer_id is required")
	}

	runs, err := h.runs.ListRunsForBuyer(c.Request().Context(), buyerID, 20)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*domain.CheckoutRun{}
	}
	return c.JSON(http.StatusOK, checkoutRunsResponse{Runs: runs})
}

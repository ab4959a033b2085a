package handler

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmfed/delivery-system/internal/api/metrics"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// EstimateHandler serves delivery-fee quotes for multi-seller carts.
type EstimateHandler struct {
	estimation ports.EstimationService
}

func NewEstimateHandler(estimation ports.EstimationService) *EstimateHandler {
	return &EstimateHandler{estimation: estimation}
}

// Estimate handles POST /v1/delivery/estimate.
// The reported distance is rounded to a tenth of a mile for display; the fee
// is computed from the unrounded distance, so the two can disagree slightly.
func (h *EstimateHandler) Estimate(c echo.Context) error {
	var req estimateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	quote, err := h.estimation.EstimateCartDelivery(c.Request().Context(), ports.EstimateCartInput{
		ListingIDs:      req.ListingIDs,
		ShippingAddress: req.ShippingAddress.toDomain(),
	})
	if err != nil {
		metrics.QuotesTotal.WithLabelValues("error").Inc()
		return err
	}

	if quote.RateCentsPerMile == 0 {
		metrics.QuotesTotal.WithLabelValues("disabled").Inc()
	} else {
		metrics.QuotesTotal.WithLabelValues("ok").Inc()
		metrics.QuoteDistanceMiles.Observe(quote.TotalDistanceMiles)
	}

	return c.JSON(http.StatusOK, estimateResponse{
		TotalDistanceMiles: math.Round(quote.TotalDistanceMiles*10) / 10,
		RateCentsPerMile:   quote.RateCentsPerMile,
		TotalFeeCents:      quote.TotalFeeCents,
	})
}

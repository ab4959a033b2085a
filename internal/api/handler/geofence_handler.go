package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmfed/delivery-system/internal/api/metrics"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// GeofenceHandler validates candidate addresses against the service area.
type GeofenceHandler struct {
	geofence ports.GeofenceService
}

func NewGeofenceHandler(geofence ports.GeofenceService) *GeofenceHandler {
	return &GeofenceHandler{geofence: geofence}
}

// Validate handles POST /v1/geofence/validate. An out-of-area or
// unverifiable address is a 200 with valid=false, not an error status: the
// storefront renders the reason inline on the signup form.
func (h *GeofenceHandler) Validate(c echo.Context) error {
	var req geofenceValidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	check, err := h.geofence.ValidateAddress(c.Request().Context(), req.Address.toDomain())
	if err != nil {
		return err
	}

	switch {
	case check.Valid:
		metrics.GeofenceChecksTotal.WithLabelValues("valid").Inc()
	case check.Reason != "":
		metrics.GeofenceChecksTotal.WithLabelValues(check.Reason).Inc()
	default:
		metrics.GeofenceChecksTotal.WithLabelValues("invalid").Inc()
	}

	return c.JSON(http.StatusOK, geofenceValidateResponse{Valid: check.Valid, Reason: check.Reason})
}

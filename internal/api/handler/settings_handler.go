package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmfed/delivery-system/internal/core/ports"
)

// SettingsHandler serves the admin-tunable delivery configuration. Reads are
// public (the storefront needs the rate to render quotes); writes are gated
// inside the service on the marketplace admin flag.
type SettingsHandler struct {
	settings ports.SettingsService
}

func NewSettingsHandler(settings ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetDeliverySettings handles GET /v1/admin/delivery-settings.
func (h *SettingsHandler) GetDeliverySettings(c echo.Context) error {
	rate, err := h.settings.DeliveryRate(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliverySettingsResponse{RateCentsPerMile: rate})
}

// UpdateDeliverySettings handles PUT /v1/admin/delivery-settings.
func (h *SettingsHandler) UpdateDeliverySettings(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	var req updateDeliverySettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.settings.UpdateDeliveryRate(c.Request().Context(), token, *req.RateCentsPerMile); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliverySettingsResponse{RateCentsPerMile: *req.RateCentsPerMile})
}

// GetGeofenceSettings handles GET /v1/admin/geofence-settings.
func (h *SettingsHandler) GetGeofenceSettings(c echo.Context) error {
	polygon, err := h.settings.Geofence(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, geofenceSettingsResponse{Polygon: polygon})
}

// UpdateGeofenceSettings handles PUT /v1/admin/geofence-settings.
// A null polygon clears the restriction.
func (h *SettingsHandler) UpdateGeofenceSettings(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	var req updateGeofenceSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.settings.UpdateGeofence(c.Request().Context(), token, req.Polygon); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, geofenceSettingsResponse{Polygon: req.Polygon})
}

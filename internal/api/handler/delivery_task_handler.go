package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmfed/delivery-system/internal/api/metrics"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// DeliveryTaskHandler creates provider tasks for confirmed transactions.
type DeliveryTaskHandler struct {
	tasks ports.DeliveryTaskService
}

func NewDeliveryTaskHandler(tasks ports.DeliveryTaskService) *DeliveryTaskHandler {
	return &DeliveryTaskHandler{tasks: tasks}
}

// CreateTask handles POST /v1/delivery/tasks. When the provider integration
// is not configured, the response is a 200 with skipped=true so callers do
// not treat a disabled integration as a failure.
func (h *DeliveryTaskHandler) CreateTask(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, skipped, err := h.tasks.CreateForTransaction(c.Request().Context(), token, req.TransactionID)
	if err != nil {
		metrics.DeliveryTasksTotal.WithLabelValues("error").Inc()
		return err
	}
	if skipped {
		metrics.DeliveryTasksTotal.WithLabelValues("skipped").Inc()
		return c.JSON(http.StatusOK, createTaskResponse{Skipped: true})
	}

	metrics.DeliveryTasksTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, createTaskResponse{TaskID: task.ID, TrackingURL: task.TrackingURL})
}

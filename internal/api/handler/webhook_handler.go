package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/api/metrics"
	"github.com/farmfed/delivery-system/internal/core/ports"
	"github.com/farmfed/delivery-system/internal/infrastructure/queue"
)

// WebhookHandler receives delivery-provider callbacks. Events are
// acknowledged immediately and reconciled asynchronously through the
// dispatcher; the provider retries on anything but a 2xx, and a retry storm
// against a failing marketplace transition helps nobody.
type WebhookHandler struct {
	dispatcher *queue.Dispatcher
	logger     zerolog.Logger
}

func NewWebhookHandler(dispatcher *queue.Dispatcher, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher, logger: logger}
}

type webhookPayload struct {
	TaskID    string `json:"taskId"`
	TriggerID int    `json:"triggerId"`
	Data      struct {
		Task struct {
			Metadata []ports.TaskMetadata `json:"metadata"`
		} `json:"task"`
	} `json:"data"`
}

// Verify handles the provider's GET endpoint-verification probe: the check
// value must be echoed back verbatim as plain text.
func (h *WebhookHandler) Verify(c echo.Context) error {
	return c.String(http.StatusOK, c.QueryParam("check"))
}

// Receive handles POST /v1/webhooks/delivery.
func (h *WebhookHandler) Receive(c echo.Context) error {
	var payload webhookPayload
	if err := c.Bind(&payload); err != nil {
		// Malformed payloads are acknowledged too; see the type comment.
		h.logger.Warn().Err(err).Msg("undecodable webhook payload")
		return c.NoContent(http.StatusOK)
	}

	metrics.WebhookEventsTotal.WithLabelValues(strconv.Itoa(payload.TriggerID)).Inc()

	h.dispatcher.Enqueue(ports.WebhookEvent{
		TriggerID: payload.TriggerID,
		TaskID:    payload.TaskID,
		Metadata:  payload.Data.Task.Metadata,
	})
	return c.NoContent(http.StatusOK)
}

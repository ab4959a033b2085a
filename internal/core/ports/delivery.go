package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// DeliveryTaskInput describes one last-mile delivery task. TransactionID is
// carried in task metadata so the provider's completion webhook can be linked
// back to the marketplace transaction.
type DeliveryTaskInput struct {
	Destination    domain.Address
	RecipientName  string
	RecipientPhone string
	Notes          string
	TransactionID  string
}

// DeliveryTask is the provider's handle for a created task.
type DeliveryTask struct {
	ID          string
	TrackingURL string
}

// DeliveryProvider is the external last-mile logistics service.
type DeliveryProvider interface {
	// Configured reports whether the provider integration is enabled.
	// Callers treat an unconfigured provider as a graceful no-op.
	Configured() bool

	CreateTask(ctx context.Context, in DeliveryTaskInput) (*DeliveryTask, error)
}

// TaskMetadata is one name/value entry on a provider task.
type TaskMetadata struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// WebhookEvent is a delivery-provider status callback.
type WebhookEvent struct {
	TriggerID int
	TaskID    string
	Metadata  []TaskMetadata
}

// TransactionID extracts the marketplace transaction reference from task
// metadata, or "" when absent.
func (e WebhookEvent) TransactionID() string {
	for _, m := range e.Metadata {
		if m.Name == "transactionId" {
			return m.Value
		}
	}
	return ""
}

// WebhookService reconciles provider callbacks with the marketplace ledger.
type WebhookService interface {
	Process(ctx context.Context, event WebhookEvent) error
}

// DeliveryTaskService creates a delivery task for a completed shipping
// transaction. skipped is true when the provider is not configured.
type DeliveryTaskService interface {
	CreateForTransaction(ctx context.Context, userToken, transactionID string) (task *DeliveryTask, skipped bool, err error)
}

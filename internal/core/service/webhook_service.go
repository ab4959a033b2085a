package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// Delivery-provider webhook trigger IDs.
// 0 = taskStart, 1 = taskETA, 2 = taskArrival, 3 = taskCompleted, 4 = taskFailed.
const triggerTaskCompleted = 3

const transitionOperatorMarkDelivered = "transition/operator-mark-delivered"

// WebhookService reconciles delivery-provider callbacks with the marketplace
// ledger: a completed task transitions its linked transaction to delivered.
//
// Process never returns an error for reconciliation problems. The caller
// always acknowledges the webhook; an error response would only trigger
// provider-side retries against the same failing transition.
type webhookService struct {
	marketplace ports.MarketplaceClient
	runs        ports.CheckoutRunRepository
	logger      zerolog.Logger
}

func NewWebhookService(marketplace ports.MarketplaceClient, runs ports.CheckoutRunRepository, logger zerolog.Logger) ports.WebhookService {
	return &webhookService{marketplace: marketplace, runs: runs, logger: logger}
}

func (s *webhookService) Process(ctx context.Context, event ports.WebhookEvent) error {
	if event.TriggerID != triggerTaskCompleted {
		s.logger.Debug().Int("trigger_id", event.TriggerID).Str("task_id", event.TaskID).Msg("webhook event ignored")
		return nil
	}

	transactionID := event.TransactionID()
	if transactionID == "" {
		s.logger.Warn().Str("task_id", event.TaskID).Msg("webhook task has no transactionId metadata")
		return nil
	}

	if err := s.marketplace.TransitionTransaction(ctx, transactionID, transitionOperatorMarkDelivered); err != nil {
		// Operator has to mark the transaction delivered manually; keep a
		// durable record so it is not lost in the logs.
		s.logger.Error().Err(err).
			Str("transaction_id", transactionID).
			Str("task_id", event.TaskID).
			Msg("could not transition transaction to delivered, operator intervention required")
		s.recordFailure(ctx, transactionID, event.TaskID, err)
		return nil
	}

	s.logger.Info().Str("transaction_id", transactionID).Msg("transaction marked as delivered")
	return nil
}

func (s *webhookService) recordFailure(ctx context.Context, transactionID, taskID string, cause error) {
	failure := &domain.ReconciliationFailure{
		TransactionID: transactionID,
		TaskID:        taskID,
		Reason:        cause.Error(),
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.runs.RecordReconciliationFailure(ctx, failure); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("failed to record reconciliation failure")
	}
}

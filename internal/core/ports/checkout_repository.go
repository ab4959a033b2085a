package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// CheckoutRunRepository archives terminal checkout runs and webhook
// reconciliation failures for buyer-facing history and operator review.
// Writes are best-effort from the orchestrator's point of view.
type CheckoutRunRepository interface {
	Archive(ctx context.Context, run *domain.CheckoutRun) error
	RecordReconciliationFailure(ctx context.Context, failure *domain.ReconciliationFailure) error

	// ListRunsForBuyer returns the buyer's most recent archived runs,
	// newest first.
	ListRunsForBuyer(ctx context.Context, buyerID string, limit int64) ([]*domain.CheckoutRun, error)
}

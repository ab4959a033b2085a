package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

const (
	collectionCheckoutRuns           = "checkout_runs"
	collectionReconciliationFailures = "reconciliation_failures"
)

// CheckoutRepository archives terminal checkout runs and webhook
// reconciliation failures.
type CheckoutRepository struct {
	runs     *mongo.Collection
	failures *mongo.Collection
}

func NewCheckoutRepository(db *mongo.Database) *CheckoutRepository {
	return &CheckoutRepository{
		runs:     db.Collection(collectionCheckoutRuns),
		failures: db.Collection(collectionReconciliationFailures),
	}
}

// Archive upserts the terminal run by its ID, so a retried archive does not
// duplicate the document.
func (r *CheckoutRepository) Archive(ctx context.Context, run *domain.CheckoutRun) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.runs.ReplaceOne(ctx,
		bson.M{"_id": run.ID},
		run,
		options.Replace().SetUpsert(true),
	)
	return err
}

// RecordReconciliationFailure appends one failure record for operator review.
func (r *CheckoutRepository) RecordReconciliationFailure(ctx context.Context, failure *domain.ReconciliationFailure) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.failures.InsertOne(ctx, failure)
	return err
}

// ListRunsForBuyer returns the buyer's most recent runs, newest first.
func (r *CheckoutRepository) ListRunsForBuyer(ctx context.Context, buyerID string, limit int64) ([]*domain.CheckoutRun, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	cursor, err := r.runs.Find(ctx,
		bson.M{"buyer_id": buyerID},
		options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []*domain.CheckoutRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// EnsureIndexes creates the lookup indexes for both collections.
func (r *CheckoutRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.runs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "started_at", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = r.failures.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
		{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
	})
	return err
}

package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// CartStore persists each buyer's cart between quote and checkout. After a
// checkout run, succeeded items are removed so only failed items remain for
// retry.
type CartStore interface {
	Items(ctx context.Context, buyerID string) ([]domain.CartLineItem, error)
	Save(ctx context.Context, buyerID string, items []domain.CartLineItem) error
	RemoveItems(ctx context.Context, buyerID string, listingIDs []string) error
	Clear(ctx context.Context, buyerID string) error
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// cartTTL bounds abandoned carts. Every write refreshes it.
const cartTTL = 30 * 24 * time.Hour

// CartStore keeps each buyer's cart as a JSON array under one key. Partial
// checkout runs rewrite the remaining items so failed items survive for
// retry.
type CartStore struct {
	client *redis.Client
}

func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

func cartKey(buyerID string) string {
	return "cart:" + buyerID
}

func (s *CartStore) Items(ctx context.Context, buyerID string) ([]domain.CartLineItem, error) {
	raw, err := s.client.Get(ctx, cartKey(buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (s *CartStore) Save(ctx context.Context, buyerID string, items []domain.CartLineItem) error {
	if len(items) == 0 {
		return s.Clear(ctx, buyerID)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(buyerID), raw, cartTTL).Err(); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

// RemoveItems drops the given listings from the cart, keeping the order of
// what remains.
func (s *CartStore) RemoveItems(ctx context.Context, buyerID string, listingIDs []string) error {
	items, err := s.Items(ctx, buyerID)
	if err != nil {
		return err
	}

	drop := make(map[string]bool, len(listingIDs))
	for _, id := range listingIDs {
		drop[id] = true
	}

	kept := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		if !drop[item.ListingID] {
			kept = append(kept, item)
		}
	}
	return s.Save(ctx, buyerID, kept)
}

func (s *CartStore) Clear(ctx context.Context, buyerID string) error {
	if err := s.client.Del(ctx, cartKey(buyerID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// EstimationService orchestrates a full cart quote: listing fetches, seller
// location resolution, route optimization, and fee conversion.
type EstimationService struct {
	marketplace ports.MarketplaceClient
	settings    ports.SettingsStore
	geocoder    ports.Geocoder
	resolver    *AddressResolver
	estimator   *RouteCostEstimator
	logger      zerolog.Logger
}

func NewEstimationService(
	marketplace ports.MarketplaceClient,
	settings ports.SettingsStore,
	geocoder ports.Geocoder,
	resolver *AddressResolver,
	estimator *RouteCostEstimator,
	logger zerolog.Logger,
) *EstimationService {
	return &EstimationService{
		marketplace: marketplace,
		settings:    settings,
		geocoder:    geocoder,
		resolver:    resolver,
		estimator:   estimator,
		logger:      logger,
	}
}

// EstimateCartDelivery computes the delivery fee for a multi-seller cart.
//
// A rate of 0 short-circuits to a zero quote before any network call. Seller
// listings that cannot be located are dropped from routing. The buyer address
// is load-bearing for every route leg, so its geocoding failure fails the
// whole request (wrapped domain.ErrBuyerUnlocatable).
func (s *EstimationService) EstimateCartDelivery(ctx context.Context, in ports.EstimateCartInput) (*domain.RouteQuote, error) {
	rate, err := s.settings.DeliveryRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("delivery rate: %w", err)
	}
	if rate <= 0 {
		return &domain.RouteQuote{}, nil
	}

	listings, err := s.fetchListings(ctx, in.ListingIDs)
	if err != nil {
		return nil, err
	}

	locations := s.resolveAll(ctx, listings)
	if len(locations) == 0 {
		// Nothing to route: the quote is free rather than an error.
		return &domain.RouteQuote{RateCentsPerMile: rate}, nil
	}

	origins := make([]domain.Coordinate, 0, len(locations))
	for _, loc := range locations {
		origins = append(origins, loc.Coordinate)
	}

	buyer, err := s.geocoder.Geocode(ctx, in.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuyerUnlocatable, err)
	}

	quote := s.estimator.Quote(origins, buyer, rate)
	s.logger.Info().
		Int("listings", len(in.ListingIDs)).
		Int("stops", len(origins)).
		Float64("distance_miles", quote.TotalDistanceMiles).
		Int64("fee_cents", quote.TotalFeeCents).
		Msg("cart delivery estimated")
	return &quote, nil
}

// fetchListings loads every distinct listing concurrently through the
// integration path, which can see private seller addresses. When that path is
// unavailable the whole batch degrades to the public path: resolution quality
// drops (no seller data), but the quote still succeeds.
func (s *EstimationService) fetchListings(ctx context.Context, listingIDs []string) ([]*ports.ListingWithSeller, error) {
	results, err := fanOut(ctx, distinct(listingIDs), s.marketplace.ShowListingWithSeller)
	if err == nil {
		return results, nil
	}
	if !errors.Is(err, domain.ErrPermissionDenied) {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	s.logger.Warn().Msg("integration data access unavailable, degrading to public listing data")
	results, err = fanOut(ctx, distinct(listingIDs), func(ctx context.Context, id string) (*ports.ListingWithSeller, error) {
		listing, err := s.marketplace.ShowListing(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ports.ListingWithSeller{Listing: *listing}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	return results, nil
}

// resolveAll resolves seller locations concurrently. The lookups are
// independent and read-only, so ordering does not matter; unresolved listings
// are simply excluded.
func (s *EstimationService) resolveAll(ctx context.Context, listings []*ports.ListingWithSeller) []domain.SellerLocation {
	type slot struct {
		loc domain.SellerLocation
		ok  bool
	}

	slots := make([]slot, len(listings))
	var wg sync.WaitGroup
	for i, lw := range listings {
		wg.Add(1)
		go func(i int, lw *ports.ListingWithSeller) {
			defer wg.Done()
			loc, ok := s.resolver.Resolve(ctx, lw)
			slots[i] = slot{loc: loc, ok: ok}
		}(i, lw)
	}
	wg.Wait()

	locations := make([]domain.SellerLocation, 0, len(listings))
	for _, sl := range slots {
		if sl.ok {
			locations = append(locations, sl.loc)
		}
	}
	return locations
}

// fanOut runs fetch for every id concurrently and joins the results in input
// order. The first error wins.
func fanOut(ctx context.Context, ids []string, fetch func(context.Context, string) (*ports.ListingWithSeller, error)) ([]*ports.ListingWithSeller, error) {
	results := make([]*ports.ListingWithSeller, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i], errs[i] = fetch(ctx, id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

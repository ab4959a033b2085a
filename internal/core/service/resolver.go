package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// resolverStrategy attempts one source of a seller location. ok is false when
// the source is absent or its geocode failed; the resolver then falls through
// to the next strategy.
type resolverStrategy struct {
	source  domain.ResolutionSource
	resolve func(ctx context.Context, lw *ports.ListingWithSeller) (domain.Coordinate, bool)
}

// AddressResolver turns a listing/seller record into coordinates through a
// prioritized fallback chain, geocoding only when the cheaper sources miss.
type AddressResolver struct {
	strategies []resolverStrategy
	logger     zerolog.Logger
}

func NewAddressResolver(geocoder ports.Geocoder, logger zerolog.Logger) *AddressResolver {
	r := &AddressResolver{logger: logger}
	r.strategies = []resolverStrategy{
		{domain.SourceListingGeolocation, r.fromListingGeolocation},
		{domain.SourceSellerCoordinates, r.fromSellerCoordinates},
		{domain.SourceSellerAddress, geocodeStrategy(geocoder, sellerAddress)},
		{domain.SourceListingLocation, geocodeStrategy(geocoder, listingLocationAddress)},
	}
	return r
}

// Resolve returns the seller location for a listing, or ok=false when every
// source failed. An unresolved listing is not an error: the caller excludes
// it from routing.
func (r *AddressResolver) Resolve(ctx context.Context, lw *ports.ListingWithSeller) (domain.SellerLocation, bool) {
	for _, s := range r.strategies {
		if coord, ok := s.resolve(ctx, lw); ok {
			return domain.SellerLocation{
				ListingID:  lw.Listing.ID,
				Coordinate: coord,
				Source:     s.source,
			}, true
		}
	}
	r.logger.Debug().Str("listing_id", lw.Listing.ID).Msg("seller location unresolved, excluding from route")
	return domain.SellerLocation{}, false
}

func (r *AddressResolver) fromListingGeolocation(_ context.Context, lw *ports.ListingWithSeller) (domain.Coordinate, bool) {
	if geo := lw.Listing.Geolocation; geo != nil {
		return *geo, true
	}
	return domain.Coordinate{}, false
}

func (r *AddressResolver) fromSellerCoordinates(_ context.Context, lw *ports.ListingWithSeller) (domain.Coordinate, bool) {
	if lw.Seller != nil && lw.Seller.Coordinate != nil {
		return *lw.Seller.Coordinate, true
	}
	return domain.Coordinate{}, false
}

// geocodeStrategy builds a strategy that geocodes whatever address extract
// yields. Geocoding failures are a step failure, not a propagated error.
func geocodeStrategy(geocoder ports.Geocoder, extract func(*ports.ListingWithSeller) (domain.Address, bool)) func(context.Context, *ports.ListingWithSeller) (domain.Coordinate, bool) {
	return func(ctx context.Context, lw *ports.ListingWithSeller) (domain.Coordinate, bool) {
		addr, ok := extract(lw)
		if !ok {
			return domain.Coordinate{}, false
		}
		coord, err := geocoder.Geocode(ctx, addr)
		if err != nil {
			return domain.Coordinate{}, false
		}
		return coord, true
	}
}

func sellerAddress(lw *ports.ListingWithSeller) (domain.Address, bool) {
	if lw.Seller == nil || lw.Seller.Address == nil || lw.Seller.Address.Line1 == "" {
		return domain.Address{}, false
	}
	return *lw.Seller.Address, true
}

func listingLocationAddress(lw *ports.ListingWithSeller) (domain.Address, bool) {
	if lw.Listing.LocationAddress == "" {
		return domain.Address{}, false
	}
	return domain.Address{Line1: lw.Listing.LocationAddress}, true
}

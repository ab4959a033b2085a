package ports

import (
	"context"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

// Geocoder resolves a free-text postal address to coordinates via an external
// provider. Implementations return an error wrapping domain.ErrGeocodeFailed
// for non-2xx responses and empty result sets; callers decide whether that is
// fatal (buyer address) or a fall-through (seller address).
type Geocoder interface {
	Geocode(ctx context.Context, address domain.Address) (domain.Coordinate, error)
}

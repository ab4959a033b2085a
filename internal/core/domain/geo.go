package domain

import (
	"errors"
	"math"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distances.
const earthRadiusMiles = 3958.8

var ErrInvalidPolygon = errors.New("invalid geofence polygon")

// Coordinate represents a geographic point (WGS 84). Value type, never mutated.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Address represents a postal address. All fields are optional except Line1
// when the address has to be geocoded.
type Address struct {
	Line1      string `json:"line1" bson:"line1"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	Country    string `json:"country,omitempty" bson:"country,omitempty"`
}

// DistanceMiles returns the great-circle (haversine) distance between a and b
// in miles. Symmetric, zero for identical points. NaN inputs propagate as NaN;
// validating coordinates is the caller's responsibility.
func DistanceMiles(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Polygon is the closed outer ring of a service area: at least four
// coordinates with the first equal to the last. Holes are not modeled.
type Polygon struct {
	Ring []Coordinate `json:"ring" bson:"ring"`
}

// Valid reports whether the ring has enough points to form a closed polygon.
func (p Polygon) Valid() bool {
	return len(p.Ring) >= 4
}

// Contains reports whether point lies inside the polygon, using ray casting
// over the outer ring. Degenerate polygons (ring shorter than 4) contain
// nothing. Points exactly on an edge are implementation-defined: ray casting
// classifies them as inside or outside depending on edge orientation, and no
// guarantee is made either way.
func (p Polygon) Contains(point Coordinate) bool {
	if !p.Valid() {
		return false
	}

	inside := false
	for i, j := 0, len(p.Ring)-1; i < len(p.Ring); j, i = i, i+1 {
		vi, vj := p.Ring[i], p.Ring[j]
		intersects := (vi.Lng > point.Lng) != (vj.Lng > point.Lng) &&
			point.Lat < (vj.Lat-vi.Lat)*(point.Lng-vi.Lng)/(vj.Lng-vi.Lng)+vi.Lat
		if intersects {
			inside = !inside
		}
	}
	return inside
}

// GeoJSONPolygon is the wire/storage form of the configured geofence.
// Coordinates follow GeoJSON order: [lng, lat]; the first ring is the outer
// boundary and any further rings are ignored.
type GeoJSONPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Validate checks the GeoJSON shape: type "Polygon" with an outer ring of at
// least four positions.
func (g *GeoJSONPolygon) Validate() error {
	if g == nil || g.Type != "Polygon" || len(g.Coordinates) == 0 || len(g.Coordinates[0]) < 4 {
		return ErrInvalidPolygon
	}
	return nil
}

// Polygon converts the outer ring to the domain representation.
func (g *GeoJSONPolygon) Polygon() Polygon {
	if g == nil || len(g.Coordinates) == 0 {
		return Polygon{}
	}
	ring := make([]Coordinate, 0, len(g.Coordinates[0]))
	for _, pos := range g.Coordinates[0] {
		ring = append(ring, Coordinate{Lat: pos[1], Lng: pos[0]})
	}
	return Polygon{Ring: ring}
}

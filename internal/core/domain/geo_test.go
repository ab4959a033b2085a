package domain

import (
	"math"
	"testing"
)

func TestDistanceMiles_IdenticalPointsAreZero(t *testing.T) {
	p := Coordinate{Lat: 37.7749, Lng: -122.4194}
	if d := DistanceMiles(p, p); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := Coordinate{Lat: 37.7749, Lng: -122.4194}
	b := Coordinate{Lat: 34.0522, Lng: -118.2437}
	if ab, ba := DistanceMiles(a, b), DistanceMiles(b, a); math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistanceMiles_KnownDistance(t *testing.T) {
	// San Francisco to Los Angeles, ~347 great-circle miles.
	sf := Coordinate{Lat: 37.7749, Lng: -122.4194}
	la := Coordinate{Lat: 34.0522, Lng: -118.2437}

	d := DistanceMiles(sf, la)
	if d < 340 || d > 355 {
		t.Errorf("SF-LA distance = %f, want ~347", d)
	}
}

func TestDistanceMiles_OneDegreeLatitude(t *testing.T) {
	a := Coordinate{Lat: 40, Lng: -105}
	b := Coordinate{Lat: 41, Lng: -105}

	d := DistanceMiles(a, b)
	if d < 68 || d > 70 {
		t.Errorf("one degree of latitude = %f miles, want ~69", d)
	}
}

func square() Polygon {
	return Polygon{Ring: []Coordinate{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}, {Lat: 10, Lng: 10}, {Lat: 10, Lng: 0}, {Lat: 0, Lng: 0},
	}}
}

func TestPolygon_ContainsInsidePoint(t *testing.T) {
	if !square().Contains(Coordinate{Lat: 5, Lng: 5}) {
		t.Error("center of the square must be inside")
	}
}

func TestPolygon_ExcludesOutsidePoint(t *testing.T) {
	p := square()
	for _, point := range []Coordinate{
		{Lat: 20, Lng: 20},
		{Lat: -5, Lng: 5},
		{Lat: 5, Lng: 15},
	} {
		if p.Contains(point) {
			t.Errorf("point %+v must be outside", point)
		}
	}
}

func TestPolygon_ConcaveShape(t *testing.T) {
	// A "U": the notch between the arms is outside even though the bounding
	// box contains it.
	u := Polygon{Ring: []Coordinate{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10}, {Lat: 10, Lng: 7},
		{Lat: 3, Lng: 7}, {Lat: 3, Lng: 3},
		{Lat: 10, Lng: 3}, {Lat: 10, Lng: 0},
		{Lat: 0, Lng: 0},
	}}

	if !u.Contains(Coordinate{Lat: 1, Lng: 5}) {
		t.Error("base of the U must be inside")
	}
	if u.Contains(Coordinate{Lat: 8, Lng: 5}) {
		t.Error("notch of the U must be outside")
	}
}

func TestPolygon_DegenerateRingContainsNothing(t *testing.T) {
	degenerate := Polygon{Ring: []Coordinate{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}, {Lat: 0, Lng: 0}}}
	if degenerate.Contains(Coordinate{Lat: 5, Lng: 5}) {
		t.Error("ring shorter than four points must contain nothing")
	}
	if degenerate.Valid() {
		t.Error("three-point ring must be invalid")
	}
}

func TestGeoJSONPolygon_Validate(t *testing.T) {
	valid := &GeoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][2]float64{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid polygon rejected: %v", err)
	}

	cases := []struct {
		name string
		poly *GeoJSONPolygon
	}{
		{"nil", nil},
		{"wrong type", &GeoJSONPolygon{Type: "MultiPolygon", Coordinates: valid.Coordinates}},
		{"no rings", &GeoJSONPolygon{Type: "Polygon"}},
		{"short ring", &GeoJSONPolygon{Type: "Polygon", Coordinates: [][][2]float64{{{0, 0}, {1, 1}, {0, 0}}}}},
	}
	for _, c := range cases {
		if err := c.poly.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestGeoJSONPolygon_CoordinateOrder(t *testing.T) {
	// GeoJSON positions are [lng, lat]; conversion must swap them.
	g := &GeoJSONPolygon{
		Type:        "Polygon",
		Coordinates: [][][2]float64{{{-105, 40}, {-104, 40}, {-104, 41}, {-105, 40}}},
	}
	ring := g.Polygon().Ring
	if ring[0].Lat != 40 || ring[0].Lng != -105 {
		t.Errorf("coordinate order wrong: %+v", ring[0])
	}
}

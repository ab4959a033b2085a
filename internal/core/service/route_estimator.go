package service

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
)

const (
	// dedupThresholdMiles collapses origins closer than this into one stop,
	// so multiple listings from the same seller do not double-count distance.
	dedupThresholdMiles = 0.1

	// maxExactOrigins caps the brute-force search at 7! = 5040 permutations.
	maxExactOrigins = 7
)

// RouteCostEstimator computes an approximate optimal multi-stop route from a
// set of origins to one destination and converts it to a fee.
type RouteCostEstimator struct {
	logger zerolog.Logger
}

func NewRouteCostEstimator(logger zerolog.Logger) *RouteCostEstimator {
	return &RouteCostEstimator{logger: logger}
}

// Deduplicate removes origins within dedupThresholdMiles of an earlier one.
// Strictly-less-than: two stops exactly 0.1 miles apart both survive.
func (e *RouteCostEstimator) Deduplicate(origins []domain.Coordinate) []domain.Coordinate {
	unique := make([]domain.Coordinate, 0, len(origins))
	for _, o := range origins {
		duplicate := false
		for _, u := range unique {
			if domain.DistanceMiles(u, o) < dedupThresholdMiles {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, o)
		}
	}
	return unique
}

// RouteDistance returns the total miles to visit every origin and end at the
// destination. Up to maxExactOrigins the visit order is the true optimum
// found by exhaustive permutation; beyond that a nearest-neighbour heuristic
// is used, which scales linearly but is not guaranteed optimal. Origins are
// treated as an unordered set.
func (e *RouteCostEstimator) RouteDistance(origins []domain.Coordinate, destination domain.Coordinate) float64 {
	switch {
	case len(origins) == 0:
		return 0
	case len(origins) == 1:
		return domain.DistanceMiles(origins[0], destination)
	case len(origins) <= maxExactOrigins:
		return bruteForceRoute(origins, destination)
	default:
		e.logger.Debug().Int("origins", len(origins)).Msg("route size above exact limit, using nearest-neighbour heuristic")
		return nearestNeighbourRoute(origins, destination)
	}
}

// Quote converts a route through origins into a fee at the given rate.
// A rate of 0 disables fee calculation entirely.
func (e *RouteCostEstimator) Quote(origins []domain.Coordinate, destination domain.Coordinate, rateCentsPerMile int64) domain.RouteQuote {
	if rateCentsPerMile <= 0 {
		return domain.RouteQuote{}
	}
	distance := e.RouteDistance(e.Deduplicate(origins), destination)
	return domain.RouteQuote{
		TotalDistanceMiles: distance,
		RateCentsPerMile:   rateCentsPerMile,
		TotalFeeCents:      FeeCents(distance, rateCentsPerMile),
	}
}

// FeeCents rounds distance * rate to whole cents.
func FeeCents(distanceMiles float64, rateCentsPerMile int64) int64 {
	return int64(math.Round(distanceMiles * float64(rateCentsPerMile)))
}

// bruteForceRoute enumerates every visit order and returns the shortest
// total path length including the final leg to the destination.
func bruteForceRoute(origins []domain.Coordinate, destination domain.Coordinate) float64 {
	best := math.Inf(1)

	order := make([]int, len(origins))
	for i := range order {
		order[i] = i
	}

	var permute func(k int)
	permute = func(k int) {
		if k == len(order) {
			total := 0.0
			for i := 0; i < len(order)-1; i++ {
				total += domain.DistanceMiles(origins[order[i]], origins[order[i+1]])
			}
			total += domain.DistanceMiles(origins[order[len(order)-1]], destination)
			if total < best {
				best = total
			}
			return
		}
		for i := k; i < len(order); i++ {
			order[k], order[i] = order[i], order[k]
			permute(k + 1)
			order[k], order[i] = order[i], order[k]
		}
	}
	permute(0)

	return best
}

// nearestNeighbourRoute starts from the origin farthest from the destination
// (an anchor that reduces backtracking), repeatedly visits the nearest
// unvisited origin, and ends at the destination.
func nearestNeighbourRoute(origins []domain.Coordinate, destination domain.Coordinate) float64 {
	start, maxDist := 0, -1.0
	for i, o := range origins {
		if d := domain.DistanceMiles(o, destination); d > maxDist {
			maxDist = d
			start = i
		}
	}

	visited := make([]bool, len(origins))
	visited[start] = true
	current := origins[start]
	total := 0.0

	for visits := 1; visits < len(origins); visits++ {
		next, nextDist := -1, math.Inf(1)
		for i, o := range origins {
			if visited[i] {
				continue
			}
			if d := domain.DistanceMiles(current, o); d < nextDist {
				nextDist = d
				next = i
			}
		}
		total += nextDist
		current = origins[next]
		visited[next] = true
	}

	return total + domain.DistanceMiles(current, destination)
}

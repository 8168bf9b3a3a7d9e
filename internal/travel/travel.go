// Package travel converts coordinate pairs into walking time and distance.
// The geodesic estimate is the always-available baseline; the 2GIS distance
// matrix refines it for finalized routes when a credential is configured.
package travel

import (
	"context"

	"github.com/umahmood/haversine"

	"github.com/gorodgid/go-route-planner/internal/types"
)

// AvgWalkingSpeedKmh converts geodesic distance into walking minutes.
const AvgWalkingSpeedKmh = 4.5

// Estimator is the travel-time contract route assembly depends on. Both
// methods always succeed; a degraded external provider falls back to the
// geodesic baseline internally.
type Estimator interface {
	// Travel estimates one leg using the geodesic baseline.
	Travel(a, b types.GeoPoint) (minutes, km float64)
	// RouteTravelTimes estimates every consecutive segment of an ordered
	// point list, preferring the external routing matrix.
	RouteTravelTimes(ctx context.Context, points []types.GeoPoint) (minutes, km []float64)
}

// Geodesic returns the great-circle walking estimate between two points.
func Geodesic(a, b types.GeoPoint) (minutes, km float64) {
	_, km = haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	minutes = km / AvgWalkingSpeedKmh * 60
	return minutes, km
}

// geodesicSegments applies the baseline to every consecutive pair.
func geodesicSegments(points []types.GeoPoint) (minutes, km []float64) {
	if len(points) < 2 {
		return nil, nil
	}
	minutes = make([]float64, 0, len(points)-1)
	km = make([]float64, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		m, d := Geodesic(points[i], points[i+1])
		minutes = append(minutes, m)
		km = append(km, d)
	}
	return minutes, km
}

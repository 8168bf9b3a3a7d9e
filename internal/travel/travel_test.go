package travel

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorodgid/go-route-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGeodesic(t *testing.T) {
	kremlin := types.GeoPoint{Lat: 56.3287, Lon: 44.0020}
	fair := types.GeoPoint{Lat: 56.3300, Lon: 43.9616}

	t.Run("identical points cost nothing", func(t *testing.T) {
		minutes, km := Geodesic(kremlin, kremlin)
		assert.Zero(t, minutes)
		assert.Zero(t, km)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		m1, d1 := Geodesic(kremlin, fair)
		m2, d2 := Geodesic(fair, kremlin)
		assert.InDelta(t, d1, d2, 1e-9)
		assert.InDelta(t, m1, m2, 1e-9)
	})

	t.Run("minutes follow walking speed", func(t *testing.T) {
		minutes, km := Geodesic(kremlin, fair)
		require.Greater(t, km, 0.0)
		assert.InDelta(t, km/AvgWalkingSpeedKmh*60, minutes, 1e-9)
		// The fair is roughly 2.5 km from the kremlin.
		assert.InDelta(t, 2.5, km, 0.5)
	})
}

func TestMatrixEstimator_GeodesicBaseline(t *testing.T) {
	e := NewMatrixEstimator("", "", 0, 0, testLogger())

	a := types.GeoPoint{Lat: 56.3287, Lon: 44.0020}
	b := types.GeoPoint{Lat: 56.3300, Lon: 43.9616}
	c := types.GeoPoint{Lat: 56.3230, Lon: 44.0280}

	t.Run("Travel is the geodesic estimate", func(t *testing.T) {
		gotM, gotKm := e.Travel(a, b)
		wantM, wantKm := Geodesic(a, b)
		assert.Equal(t, wantM, gotM)
		assert.Equal(t, wantKm, gotKm)
	})

	t.Run("no credential means geodesic segments", func(t *testing.T) {
		minutes, km := e.RouteTravelTimes(context.Background(), []types.GeoPoint{a, b, c})
		require.Len(t, minutes, 2)
		require.Len(t, km, 2)

		wantM, wantKm := Geodesic(a, b)
		assert.InDelta(t, wantM, minutes[0], 1e-9)
		assert.InDelta(t, wantKm, km[0], 1e-9)
	})

	t.Run("fewer than two points yield nothing", func(t *testing.T) {
		minutes, km := e.RouteTravelTimes(context.Background(), []types.GeoPoint{a})
		assert.Nil(t, minutes)
		assert.Nil(t, km)
	})
}

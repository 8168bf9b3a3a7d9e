package route

import (
	"github.com/gorodgid/go-route-planner/internal/types"
)

// Visit-time defaults when neither the place nor its category carries an
// estimate.
const (
	defaultVisitMinutes     = 30
	defaultFoodVisitMinutes = 45
)

// Minutes of sightseeing after which a food stop is attempted. A user who
// asked for food gets one almost immediately; otherwise a meal break is
// worked in every three hours.
const (
	explicitFoodWaitMinutes      = 30.0
	opportunisticFoodWaitMinutes = 180.0
)

// visitEstimator resolves a place's visit duration with a default of last
// resort. catalog.Store satisfies it.
type visitEstimator interface {
	VisitMinutes(p types.Place, def int) int
}

// travelFunc estimates one leg as (minutes, km). The optimizer only ever
// uses the geodesic baseline; the external matrix is queried once over the
// finalized sequence for display.
type travelFunc func(a, b types.GeoPoint) (minutes, km float64)

// candidatePool is an index arena over a private copy of a candidate list.
// Selection marks entries used instead of removing them mid-scan, and the
// copy keeps concurrent requests from sharing mutable state.
type candidatePool struct {
	places []types.Place
	used   []bool
	left   int
}

func newCandidatePool(places []types.Place) *candidatePool {
	cp := make([]types.Place, len(places))
	copy(cp, places)
	return &candidatePool{
		places: cp,
		used:   make([]bool, len(cp)),
		left:   len(cp),
	}
}

// nearest scans the remaining candidates for the smallest travel time from
// the cursor. "Nearest" depends on the current location, so each call is a
// fresh O(n) scan over the live pool.
func (p *candidatePool) nearest(from types.GeoPoint, travel travelFunc) (idx int, minutes float64) {
	idx = -1
	for i, place := range p.places {
		if p.used[i] {
			continue
		}
		m, _ := travel(from, place.Point())
		if idx == -1 || m < minutes {
			idx = i
			minutes = m
		}
	}
	return idx, minutes
}

func (p *candidatePool) take(i int) types.Place {
	p.used[i] = true
	p.left--
	return p.places[i]
}

// optimizeRoute greedily sequences sightseeing stops (interleaved with food
// stops) from start within budgetHours. It guarantees that cumulative
// travel plus visit time never exceeds the budget and that no place is
// selected twice. The first sightseeing stop that does not fit ends the
// route.
func optimizeRoute(
	candidates []types.Place,
	foodCandidates []types.Place,
	start types.GeoPoint,
	budgetHours float64,
	explicitFoodRequest bool,
	visits visitEstimator,
	travel travelFunc,
) []types.Place {
	budget := budgetHours * 60
	sights := newCandidatePool(candidates)
	food := newCandidatePool(foodCandidates)

	foodWait := opportunisticFoodWaitMinutes
	if explicitFoodRequest {
		foodWait = explicitFoodWaitMinutes
	}

	var route []types.Place
	location := start
	elapsed := 0.0
	sinceFood := 0.0

	for sights.left > 0 && elapsed < budget {
		if food.left > 0 && sinceFood >= foodWait {
			idx, travelMin := food.nearest(location, travel)
			place := food.places[idx]
			visitMin := float64(visits.VisitMinutes(place, defaultFoodVisitMinutes))
			if elapsed+travelMin+visitMin <= budget {
				route = append(route, food.take(idx))
				elapsed += travelMin + visitMin
				location = place.Point()
				sinceFood = 0
				// Re-check food insertion before the next sightseeing pick.
				continue
			}
		}

		idx, travelMin := sights.nearest(location, travel)
		place := sights.places[idx]
		visitMin := float64(visits.VisitMinutes(place, defaultVisitMinutes))
		if elapsed+travelMin+visitMin > budget {
			break
		}
		route = append(route, sights.take(idx))
		elapsed += travelMin + visitMin
		sinceFood += travelMin + visitMin
		location = place.Point()
	}

	return route
}

package route

import (
	"fmt"
	"strings"

	"github.com/gorodgid/go-route-planner/internal/content"
	"github.com/gorodgid/go-route-planner/internal/types"
)

// max2GISMapPoints caps the stops embedded in the 2GIS directions link; the
// map widget rejects longer point lists.
const max2GISMapPoints = 8

// twoGISDirectionsURL is the deep-link template for the map control.
const twoGISDirectionsURL = "https://2gis.ru/n_novgorod/directions/points/"

// categoryNamer supplies display names for food categories; catalog.Store
// satisfies it.
type categoryNamer interface {
	FoodCategoryName(categoryID int) string
}

// formatRouteText renders the numbered stop list with per-leg travel and
// visit estimates, followed by the totals line.
func formatRouteText(stops []types.RouteStop, totalMinutes, totalKm float64, categories categoryNamer) string {
	var sb strings.Builder
	sb.WriteString(content.RouteHeader)

	for i, stop := range stops {
		if stop.FoodStop {
			sb.WriteString(fmt.Sprintf(content.RouteFoodPlaceInfo,
				i+1,
				stop.Place.Title,
				categories.FoodCategoryName(stop.Place.CategoryID),
				int(stop.TravelMinutes),
				stop.Place.Address,
				stop.VisitMinutes,
			))
			continue
		}
		sb.WriteString(fmt.Sprintf(content.RoutePlaceInfo,
			i+1,
			stop.Place.Title,
			int(stop.TravelMinutes),
			stop.Place.Address,
			stop.VisitMinutes,
		))
	}

	hours := int(totalMinutes) / 60
	minutes := int(totalMinutes) % 60
	sb.WriteString(fmt.Sprintf(content.RouteSummary, hours, minutes, totalKm))
	return sb.String()
}

// buildControls describes the navigation controls the conversation layer
// should render: detail lookup, a 2GIS directions link over the route
// points, and route regeneration.
func buildControls(start types.GeoPoint, stops []types.RouteStop) []types.RouteControl {
	controls := []types.RouteControl{
		{Label: content.ShowDescriptionsLabel, Action: content.ShowDescriptionsAction},
	}

	if len(stops) > 0 {
		mapped := stops
		if len(mapped) > max2GISMapPoints {
			mapped = mapped[:max2GISMapPoints]
		}
		points := make([]string, 0, len(mapped)+1)
		points = append(points, fmt.Sprintf("%f,%f", start.Lon, start.Lat))
		for _, stop := range mapped {
			points = append(points, fmt.Sprintf("%f,%f", stop.Place.Longitude, stop.Place.Latitude))
		}
		controls = append(controls, types.RouteControl{
			Label: content.Open2GISMapLabel,
			URL:   twoGISDirectionsURL + strings.Join(points, "|"),
		})
	}

	controls = append(controls, types.RouteControl{
		Label:  content.RemakeRouteLabel,
		Action: content.RemakeRouteAction,
	})
	return controls
}

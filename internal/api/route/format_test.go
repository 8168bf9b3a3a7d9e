package route

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorodgid/go-route-planner/internal/content"
	"github.com/gorodgid/go-route-planner/internal/types"
)

type fakeCategories map[int]string

func (f fakeCategories) FoodCategoryName(categoryID int) string {
	return f[categoryID]
}

func stopAt(id int, title string, food bool) types.RouteStop {
	return types.RouteStop{
		Place: types.Place{
			ID: id, Title: title, Address: "адрес " + title,
			Latitude: 56.3 + float64(id)*0.001, Longitude: 44.0 + float64(id)*0.001,
			CategoryID: 7,
		},
		TravelMinutes: 12.7,
		TravelKm:      0.9,
		VisitMinutes:  30,
		FoodStop:      food,
	}
}

func TestFormatRouteText(t *testing.T) {
	cats := fakeCategories{7: "Кафе"}

	t.Run("numbered stops with travel and visit lines", func(t *testing.T) {
		stops := []types.RouteStop{stopAt(1, "Кремль", false), stopAt(2, "Усадьба", false)}
		text := formatRouteText(stops, 95, 3.4, cats)

		assert.True(t, strings.HasPrefix(text, content.RouteHeader))
		assert.Contains(t, text, "1. Кремль")
		assert.Contains(t, text, "2. Усадьба")
		assert.Contains(t, text, "В пути: 12 мин", "travel minutes are truncated")
		assert.Contains(t, text, "адрес Кремль")
	})

	t.Run("food stops render with the category name", func(t *testing.T) {
		stops := []types.RouteStop{stopAt(1, "Молоко", true)}
		text := formatRouteText(stops, 53, 0.9, cats)

		assert.Contains(t, text, "1. Молоко (Кафе)")
		assert.Contains(t, text, "На перекус: 30 мин")
		assert.NotContains(t, text, "На осмотр")
	})

	t.Run("summary splits hours and minutes", func(t *testing.T) {
		text := formatRouteText(nil, 135, 4.25, cats)
		assert.Contains(t, text, fmt.Sprintf(content.RouteSummary, 2, 15, 4.25))
	})
}

func TestBuildControls(t *testing.T) {
	start := types.GeoPoint{Lat: 56.3269, Lon: 44.0075}

	t.Run("empty route still offers regeneration", func(t *testing.T) {
		controls := buildControls(start, nil)
		require.Len(t, controls, 2)
		assert.Equal(t, content.ShowDescriptionsAction, controls[0].Action)
		assert.Equal(t, content.RemakeRouteAction, controls[1].Action)
	})

	t.Run("map link covers start plus stops", func(t *testing.T) {
		stops := []types.RouteStop{stopAt(1, "А", false), stopAt(2, "Б", false)}
		controls := buildControls(start, stops)
		require.Len(t, controls, 3)

		link := controls[1]
		assert.Equal(t, content.Open2GISMapLabel, link.Label)
		require.True(t, strings.HasPrefix(link.URL, twoGISDirectionsURL))

		points := strings.Split(strings.TrimPrefix(link.URL, twoGISDirectionsURL), "|")
		assert.Len(t, points, 3)
		// Points are lon,lat pairs, the order 2GIS expects.
		assert.Equal(t, fmt.Sprintf("%f,%f", start.Lon, start.Lat), points[0])
	})

	t.Run("map link is capped at eight stops", func(t *testing.T) {
		var stops []types.RouteStop
		for i := 1; i <= 12; i++ {
			stops = append(stops, stopAt(i, fmt.Sprintf("место %d", i), false))
		}
		controls := buildControls(start, stops)
		require.Len(t, controls, 3)

		points := strings.Split(strings.TrimPrefix(controls[1].URL, twoGISDirectionsURL), "|")
		assert.Len(t, points, max2GISMapPoints+1, "start point plus capped stops")
	})
}

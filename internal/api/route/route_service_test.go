package route

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gorodgid/go-route-planner/internal/catalog"
	"github.com/gorodgid/go-route-planner/internal/content"
	"github.com/gorodgid/go-route-planner/internal/scoring"
	"github.com/gorodgid/go-route-planner/internal/semantic"
	"github.com/gorodgid/go-route-planner/internal/textnorm"
	"github.com/gorodgid/go-route-planner/internal/travel"
	"github.com/gorodgid/go-route-planner/internal/types"
)

// testStart is a point in the city center, close to every fixture place.
var testStart = types.GeoPoint{Lat: 56.3269, Lon: 44.0075}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, topK int) []types.Place {
	args := m.Called(ctx, query, topK)
	if v := args.Get(0); v != nil {
		return v.([]types.Place)
	}
	return nil
}

func serviceTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSONFixture(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// newTestStore builds a small two-catalog fixture. Tags go through the same
// stemmer user input does, so interest matching works the way it does against
// pipeline-produced data.
func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	dir := t.TempDir()

	stem := textnorm.Stem
	places := []types.Place{
		{
			ID: 1, Title: "Музей истории города", Address: "ул. Большая Покровская, 1",
			Latitude: 56.3280, Longitude: 44.0050, CategoryID: 2,
			Tags: []string{stem("музей"), stem("история")}, EstimatedVisitMinutes: 30,
		},
		{
			ID: 2, Title: "Парк Швейцария", Address: "пр. Гагарина, 35",
			Latitude: 56.3000, Longitude: 43.9850, CategoryID: 3,
			Tags: []string{stem("парк")}, EstimatedVisitMinutes: 30,
		},
		{
			ID: 3, Title: "Экскурсия на завод, корпус А", Address: "ул. Рождественская, 10",
			Latitude: 56.3320, Longitude: 44.0120, CategoryID: 4,
			Tags: []string{stem("завод")}, EstimatedVisitMinutes: 120,
		},
		{
			ID: 4, Title: "Экскурсия на завод, корпус Б", Address: "ул. Рождественская, 24",
			Latitude: 56.3350, Longitude: 44.0200, CategoryID: 4,
			Tags: []string{stem("завод")}, EstimatedVisitMinutes: 120,
		},
		{
			ID: 5, Title: "Заводской музей", Address: "ул. Рождественская, 26",
			Latitude: 56.3355, Longitude: 44.0210, CategoryID: 4,
			Tags: []string{stem("завод")}, EstimatedVisitMinutes: 30,
		},
	}
	foodPlaces := []types.Place{
		{
			ID: 101, Title: "Кафе Молоко", Address: "ул. Алексеевская, 3",
			Latitude: 56.3290, Longitude: 44.0080, CategoryID: 7,
			Tags: []string{stem("кафе")}, EstimatedVisitMinutes: 40,
		},
	}

	files := catalog.Files{
		Places:     writeJSONFixture(t, dir, "places.json", places),
		FoodPlaces: writeJSONFixture(t, dir, "food_places.json", foodPlaces),
		Synonyms:   writeJSONFixture(t, dir, "synonyms.json", map[string]string{}),
		FoodSynonyms: writeJSONFixture(t, dir, "food_synonyms.json", map[string]string{
			stem("кафе"):     stem("кафе"),
			stem("ресторан"): stem("кафе"),
		}),
		CategoryTimes:     writeJSONFixture(t, dir, "category_times.json", map[string]int{}),
		FoodCategoryTimes: writeJSONFixture(t, dir, "food_category_times.json", map[string]int{}),
		FoodCategories:    writeJSONFixture(t, dir, "food_categories.json", map[string][]string{"7": {"Кафе"}}),
	}
	return catalog.Load(files, serviceTestLogger())
}

func newTestService(t *testing.T, store *catalog.Store) (*ServiceImpl, *mockSearcher) {
	t.Helper()
	logger := serviceTestLogger()
	normalizer := textnorm.New(store.Synonyms())
	searcher := &mockSearcher{}
	// No credential: every travel estimate is the geodesic baseline, which
	// keeps these tests deterministic and offline.
	estimator := travel.NewMatrixEstimator("", "", 0, 0, logger)
	svc := NewServiceImpl(store, normalizer, scoring.New(normalizer), searcher, estimator, logger)
	return svc, searcher
}

func TestGenerateRoute_Signals(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		svc, _ := newTestService(t, catalog.Load(catalog.Files{}, serviceTestLogger()))
		_, err := svc.GenerateRoute(context.Background(), "музей", "2", testStart)
		assert.ErrorIs(t, err, ErrSearchUninitialized)
	})

	t.Run("time is not a number", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		for _, timeStr := range []string{"", "abc", "два часа", "2h"} {
			_, err := svc.GenerateRoute(context.Background(), "музей", timeStr, testStart)
			assert.ErrorIs(t, err, ErrInvalidTimeFormat, "time %q", timeStr)
		}
	})

	t.Run("time must be positive", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		for _, timeStr := range []string{"0", "-1", "-0.5"} {
			_, err := svc.GenerateRoute(context.Background(), "музей", timeStr, testStart)
			assert.ErrorIs(t, err, ErrTimeNotPositive, "time %q", timeStr)
			assert.ErrorIs(t, err, ErrTimeOutOfRange, "time %q", timeStr)
		}
	})

	t.Run("time too long", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		for _, timeStr := range []string{"16.01", "100"} {
			_, err := svc.GenerateRoute(context.Background(), "музей", timeStr, testStart)
			assert.ErrorIs(t, err, ErrTimeTooLong, "time %q", timeStr)
			assert.ErrorIs(t, err, ErrTimeOutOfRange, "time %q", timeStr)
		}
	})

	t.Run("comma decimal hours are accepted", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		_, err := svc.GenerateRoute(context.Background(), "музей", "2,5", testStart)
		assert.NoError(t, err)
	})

	t.Run("sixteen hours is still valid", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		_, err := svc.GenerateRoute(context.Background(), "музей", "16", testStart)
		assert.NoError(t, err)
	})

	t.Run("whitespace around the number is accepted", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		_, err := svc.GenerateRoute(context.Background(), "музей", "  2  ", testStart)
		assert.NoError(t, err)
	})

	t.Run("nothing matches and the fallback is empty", func(t *testing.T) {
		svc, searcher := newTestService(t, newTestStore(t))
		searcher.On("Search", mock.Anything, "квантовая физика", fallbackTopK).Return(nil)

		_, err := svc.GenerateRoute(context.Background(), "квантовая физика", "2", testStart)
		assert.ErrorIs(t, err, ErrNoPlacesFound)
		assert.ErrorIs(t, err, ErrNoPlacesAfterFallback, "the fallback ran, the caller gets the notification")
		searcher.AssertExpectations(t)
	})

	t.Run("no candidate fits the budget", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		_, err := svc.GenerateRoute(context.Background(), "музей", "0.1", testStart)
		assert.ErrorIs(t, err, ErrCannotCreateRoute)
	})
}

func TestGenerateRoute_TagSelection(t *testing.T) {
	t.Run("museum interests pick the museum, not the park", func(t *testing.T) {
		svc, searcher := newTestService(t, newTestStore(t))
		res, err := svc.GenerateRoute(context.Background(), "музей и история", "2", testStart)
		require.NoError(t, err)

		require.Len(t, res.Stops, 1)
		assert.Equal(t, 1, res.Stops[0].Place.ID)
		searcher.AssertNotCalled(t, "Search")
	})

	t.Run("park interests pick the park", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		res, err := svc.GenerateRoute(context.Background(), "парк", "2", testStart)
		require.NoError(t, err)

		require.Len(t, res.Stops, 1)
		assert.Equal(t, 2, res.Stops[0].Place.ID)
	})

	t.Run("no stop repeats within a route", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		res, err := svc.GenerateRoute(context.Background(), "завод", "10", testStart)
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, id := range res.PlaceIDs {
			assert.False(t, seen[id], "place %d appears twice", id)
			seen[id] = true
		}
	})
}

func TestGenerateRoute_SemanticFallback(t *testing.T) {
	svc, searcher := newTestService(t, newTestStore(t))
	park, ok := svc.PlaceByID(2)
	require.True(t, ok)

	searcher.On("Search", mock.Anything, "где погулять с детьми", fallbackTopK).
		Return([]types.Place{park})

	res, err := svc.GenerateRoute(context.Background(), "где погулять с детьми", "2", testStart)
	require.NoError(t, err)

	assert.Equal(t, content.RAGFallbackNotification, res.Notification)
	require.Len(t, res.Stops, 1)
	assert.Equal(t, park.ID, res.Stops[0].Place.ID)
	searcher.AssertExpectations(t)
}

// staticEncoder always returns the same query vector.
type staticEncoder struct {
	vec []float32
}

func (s staticEncoder) Encode(context.Context, string, string) ([]float32, error) {
	return s.vec, nil
}

// A place that sits in both the embedding index and the food catalog must
// reach the route through the food pool only. If the fallback resolved it
// into the sightseeing candidates, the optimizer could append it once from
// each pool.
func TestGenerateRoute_FallbackSkipsFoodCatalog(t *testing.T) {
	store := newTestStore(t)
	logger := serviceTestLogger()
	normalizer := textnorm.New(store.Synonyms())

	indexPath := writeJSONFixture(t, t.TempDir(), "embedding_index.json", map[string]any{
		"model":     "text-embedding-004",
		"dimension": 2,
		"place_ids": []int{3, 4, 5, 101},
		"vectors":   [][]float32{{0, 0}, {1, 1}, {2, 2}, {3, 3}},
	})
	fallback := semantic.New(indexPath, staticEncoder{vec: []float32{0, 0}}, store.Sightseeing(), logger)
	require.True(t, fallback.Enabled())

	estimator := travel.NewMatrixEstimator("", "", 0, 0, logger)
	svc := NewServiceImpl(store, normalizer, scoring.New(normalizer), fallback, estimator, logger)

	// No tag matches, so the candidates come from the index; the budget is
	// long enough for an opportunistic meal from the food pool.
	res, err := svc.GenerateRoute(context.Background(), "квантовая физика", "8", testStart)
	require.NoError(t, err)
	assert.Equal(t, content.RAGFallbackNotification, res.Notification)

	seen := map[int]bool{}
	for _, stop := range res.Stops {
		assert.False(t, seen[stop.Place.ID], "place %d appears twice", stop.Place.ID)
		seen[stop.Place.ID] = true
		if stop.Place.ID == 101 {
			assert.True(t, stop.FoodStop, "the cafe may only enter through the food pool")
		}
	}
}

func TestGenerateRoute_FoodStops(t *testing.T) {
	t.Run("explicit food request adds an early meal", func(t *testing.T) {
		svc, searcher := newTestService(t, newTestStore(t))
		res, err := svc.GenerateRoute(context.Background(), "музей и кафе", "3", testStart)
		require.NoError(t, err)

		require.Len(t, res.Stops, 2)
		assert.False(t, res.Stops[0].FoodStop)
		assert.True(t, res.Stops[1].FoodStop)
		assert.Equal(t, 101, res.Stops[1].Place.ID)
		assert.Empty(t, res.Notification, "tag search succeeded, no fallback note")
		searcher.AssertNotCalled(t, "Search")
	})

	t.Run("long routes get an opportunistic meal", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		// Two long factory visits push past the three hour mark, so a cafe
		// is worked in even though the user never asked for food.
		res, err := svc.GenerateRoute(context.Background(), "завод", "7", testStart)
		require.NoError(t, err)

		foodStops := 0
		for _, stop := range res.Stops {
			if stop.FoodStop {
				foodStops++
				assert.Equal(t, 101, stop.Place.ID)
			}
		}
		assert.Equal(t, 1, foodStops)
	})

	t.Run("short budgets stay food free", func(t *testing.T) {
		svc, _ := newTestService(t, newTestStore(t))
		res, err := svc.GenerateRoute(context.Background(), "музей", "2", testStart)
		require.NoError(t, err)

		for _, stop := range res.Stops {
			assert.False(t, stop.FoodStop)
		}
	})
}

func TestGenerateRoute_ResultAssembly(t *testing.T) {
	svc, _ := newTestService(t, newTestStore(t))
	res, err := svc.GenerateRoute(context.Background(), "музей и история", "4", testStart)
	require.NoError(t, err)

	t.Run("identity and totals", func(t *testing.T) {
		assert.NotEqual(t, uuid.Nil, res.ID)
		require.Len(t, res.PlaceIDs, len(res.Stops))
		for i, stop := range res.Stops {
			assert.Equal(t, stop.Place.ID, res.PlaceIDs[i])
		}
		assert.Greater(t, res.TotalDurationMinutes, 0.0)
		assert.Greater(t, res.TotalDistanceKm, 0.0)
	})

	t.Run("stops carry travel and visit estimates", func(t *testing.T) {
		require.NotEmpty(t, res.Stops)
		first := res.Stops[0]
		assert.Greater(t, first.TravelMinutes, 0.0)
		assert.Equal(t, 30, first.VisitMinutes)
	})

	t.Run("text is rendered", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(res.Text, content.RouteHeader))
		assert.Contains(t, res.Text, res.Stops[0].Place.Title)
	})

	t.Run("controls include the map link", func(t *testing.T) {
		require.Len(t, res.Controls, 3)
		assert.Equal(t, content.ShowDescriptionsAction, res.Controls[0].Action)
		assert.True(t, strings.HasPrefix(res.Controls[1].URL, "https://2gis.ru/"))
		assert.Contains(t, res.Controls[1].URL, "|")
		assert.Equal(t, content.RemakeRouteAction, res.Controls[2].Action)
	})
}

func TestServiceImpl_PlaceByID(t *testing.T) {
	svc, _ := newTestService(t, newTestStore(t))

	p, ok := svc.PlaceByID(1)
	require.True(t, ok)
	assert.Equal(t, "Музей истории города", p.Title)

	f, ok := svc.PlaceByID(101)
	require.True(t, ok)
	assert.Equal(t, "Кафе Молоко", f.Title)

	_, ok = svc.PlaceByID(999)
	assert.False(t, ok)
}

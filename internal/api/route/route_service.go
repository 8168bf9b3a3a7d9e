package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gorodgid/go-route-planner/app/observability/metrics"
	"github.com/gorodgid/go-route-planner/internal/catalog"
	"github.com/gorodgid/go-route-planner/internal/content"
	"github.com/gorodgid/go-route-planner/internal/scoring"
	"github.com/gorodgid/go-route-planner/internal/textnorm"
	"github.com/gorodgid/go-route-planner/internal/travel"
	"github.com/gorodgid/go-route-planner/internal/types"
)

// The four user-distinguishable signal conditions plus the uninitialized
// catalog. Everything else inside route generation degrades and continues.
var (
	ErrSearchUninitialized = errors.New("route: search system is not initialized")
	ErrInvalidTimeFormat   = errors.New("route: time budget is not a number")
	ErrTimeOutOfRange      = errors.New("route: time budget must be positive and at most 16 hours")
	ErrNoPlacesFound       = errors.New("route: no places match the request")
	ErrCannotCreateRoute   = errors.New("route: no candidate fits the time budget")
)

// Refinements of the range and no-places signals. Each wraps its base
// sentinel, so errors.Is checks against the taxonomy above keep working
// while the handler picks the precise user message.
var (
	ErrTimeNotPositive       = fmt.Errorf("%w: not positive", ErrTimeOutOfRange)
	ErrTimeTooLong           = fmt.Errorf("%w: exceeds the maximum", ErrTimeOutOfRange)
	ErrNoPlacesAfterFallback = fmt.Errorf("%w: semantic fallback found nothing", ErrNoPlacesFound)
)

// MaxRouteHours is the ceiling on the requested walking time.
const MaxRouteHours = 16.0

// opportunisticFoodMinHours is the budget from which a food stop is worked
// in even without an explicit food request.
const opportunisticFoodMinHours = 3.0

// defaultFoodQuery selects the opportunistic food candidates.
const defaultFoodQuery = "кафе"

// fallbackTopK is how many places the semantic fallback contributes.
const fallbackTopK = 5

var _ Service = (*ServiceImpl)(nil)

// SemanticSearcher is the optional fallback capability; a disabled fallback
// returns empty results.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, topK int) []types.Place
}

// Service defines the business logic contract for route generation.
type Service interface {
	GenerateRoute(ctx context.Context, interests, timeStr string, start types.GeoPoint) (*types.RouteResult, error)
	PlaceByID(id int) (types.Place, bool)
}

type ServiceImpl struct {
	logger     *slog.Logger
	store      *catalog.Store
	normalizer *textnorm.Normalizer
	scorer     *scoring.Scorer
	fallback   SemanticSearcher
	travel     travel.Estimator
}

func NewServiceImpl(
	store *catalog.Store,
	normalizer *textnorm.Normalizer,
	scorer *scoring.Scorer,
	fallback SemanticSearcher,
	estimator travel.Estimator,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		store:      store,
		normalizer: normalizer,
		scorer:     scorer,
		fallback:   fallback,
		travel:     estimator,
	}
}

// PlaceByID resolves a place from either catalog, serving the detail
// lookups the conversation layer performs after a route is delivered.
func (s *ServiceImpl) PlaceByID(id int) (types.Place, bool) {
	return s.store.PlaceByID(id)
}

// GenerateRoute runs the full pipeline: parse the time budget, score
// candidates, fall back to semantic search when tag scoring is empty,
// sequence the stops greedily, then resolve final travel segments for
// display. Signal conditions come back as the package sentinel errors.
func (s *ServiceImpl) GenerateRoute(ctx context.Context, interests, timeStr string, start types.GeoPoint) (*types.RouteResult, error) {
	ctx, span := otel.Tracer("RouteService").Start(ctx, "GenerateRoute", trace.WithAttributes(
		attribute.String("route.interests", interests),
		attribute.String("route.time", timeStr),
	))
	defer span.End()
	started := time.Now()

	if !s.store.HasPlaces() {
		span.SetStatus(codes.Error, "catalog empty")
		s.recordOutcome(ctx, "uninitialized", started)
		return nil, ErrSearchUninitialized
	}

	// Russian users type comma decimals ("2,5").
	hours, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(timeStr), ",", "."), 64)
	if err != nil {
		s.recordOutcome(ctx, "bad_time_format", started)
		return nil, ErrInvalidTimeFormat
	}
	if hours <= 0 {
		s.recordOutcome(ctx, "time_out_of_range", started)
		return nil, ErrTimeNotPositive
	}
	if hours > MaxRouteHours {
		s.recordOutcome(ctx, "time_out_of_range", started)
		return nil, ErrTimeTooLong
	}

	normalized := s.normalizer.Normalize(interests)
	explicitFoodRequest := textnorm.Intersects(normalized, s.store.FoodKeywords())
	opportunisticFood := hours >= opportunisticFoodMinHours

	candidates := s.scorer.ScorePlaces(interests, s.store.Places())

	var foodCandidates []types.Place
	switch {
	case explicitFoodRequest:
		foodCandidates = s.scorer.ScoreFoodPlaces(interests, s.store.FoodPlaces())
	case opportunisticFood:
		foodCandidates = s.scorer.ScoreFoodPlaces(defaultFoodQuery, s.store.FoodPlaces())
	}

	notification := ""
	if len(candidates) == 0 {
		s.logger.InfoContext(ctx, "tag search found nothing, switching to semantic fallback",
			slog.String("interests", interests))
		metrics.Get().SemanticFallbacksTotal.Add(ctx, 1)
		span.AddEvent("semantic fallback")
		candidates = s.fallback.Search(ctx, interests, fallbackTopK)
		notification = content.RAGFallbackNotification
	}
	if len(candidates) == 0 {
		// The fallback has already run at this point, so the caller gets
		// the notification alongside the no-places message.
		s.recordOutcome(ctx, "no_places", started)
		return nil, ErrNoPlacesAfterFallback
	}

	ordered := optimizeRoute(candidates, foodCandidates, start, hours, explicitFoodRequest, s.store, s.travel.Travel)
	if len(ordered) == 0 {
		s.recordOutcome(ctx, "infeasible", started)
		return nil, ErrCannotCreateRoute
	}

	result := s.assembleResult(ctx, ordered, start)
	result.Notification = notification

	span.SetAttributes(attribute.Int("route.stops", len(ordered)))
	span.SetStatus(codes.Ok, "route generated")
	s.recordOutcome(ctx, "ok", started)
	metrics.Get().RouteStopsPerRoute.Record(ctx, int64(len(ordered)))
	return result, nil
}

// assembleResult resolves display travel segments for the finalized
// sequence (the single external routing call of the pipeline) and renders
// text and controls.
func (s *ServiceImpl) assembleResult(ctx context.Context, ordered []types.Place, start types.GeoPoint) *types.RouteResult {
	points := make([]types.GeoPoint, 0, len(ordered)+1)
	points = append(points, start)
	for _, p := range ordered {
		points = append(points, p.Point())
	}
	segMinutes, segKm := s.travel.RouteTravelTimes(ctx, points)

	var totalMinutes, totalKm float64
	stops := make([]types.RouteStop, len(ordered))
	placeIDs := make([]int, len(ordered))
	for i, p := range ordered {
		foodStop := s.store.IsFoodPlace(p.ID)
		visitDefault := defaultVisitMinutes
		if foodStop {
			visitDefault = defaultFoodVisitMinutes
		}
		visitMin := s.store.VisitMinutes(p, visitDefault)

		stops[i] = types.RouteStop{
			Place:         p,
			TravelMinutes: segMinutes[i],
			TravelKm:      segKm[i],
			VisitMinutes:  visitMin,
			FoodStop:      foodStop,
		}
		placeIDs[i] = p.ID
		totalMinutes += segMinutes[i] + float64(visitMin)
		totalKm += segKm[i]

		geodesicMin, _ := travel.Geodesic(points[i], points[i+1])
		s.logger.DebugContext(ctx, "route segment",
			slog.Int("segment", i+1),
			slog.String("to", p.Title),
			slog.Float64("geodesic_minutes", geodesicMin),
			slog.Float64("matrix_minutes", segMinutes[i]))
	}

	return &types.RouteResult{
		ID:                   uuid.New(),
		Text:                 formatRouteText(stops, totalMinutes, totalKm, s.store),
		Stops:                stops,
		Controls:             buildControls(start, stops),
		PlaceIDs:             placeIDs,
		TotalDurationMinutes: totalMinutes,
		TotalDistanceKm:      totalKm,
	}
}

func (s *ServiceImpl) recordOutcome(ctx context.Context, outcome string, started time.Time) {
	m := metrics.Get()
	m.RouteRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.RouteDurationSeconds.Record(ctx, time.Since(started).Seconds())
	s.logger.DebugContext(ctx, "route request finished", slog.String("outcome", outcome))
}

package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/gorodgid/go-route-planner/app/observability/metrics"
	"github.com/gorodgid/go-route-planner/internal/types"
)

// DefaultRoutingBaseURL is the 2GIS routing API host.
const DefaultRoutingBaseURL = "https://routing.api.2gis.com"

// travelMode is fixed: generated routes are walking tours.
const travelMode = "walking"

type segment struct {
	Minutes float64
	Km      float64
}

// MatrixEstimator queries the 2GIS distance-matrix API for an entire route
// in one batched request and falls back to the geodesic baseline per segment
// or for the whole request. External failures never reach the caller.
type MatrixEstimator struct {
	logger  *slog.Logger
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

var _ Estimator = (*MatrixEstimator)(nil)

// NewMatrixEstimator builds the estimator. An empty apiKey is allowed and
// means every call uses the geodesic baseline.
func NewMatrixEstimator(apiKey, baseURL string, timeout, cacheTTL time.Duration, logger *slog.Logger) *MatrixEstimator {
	if baseURL == "" {
		baseURL = DefaultRoutingBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if apiKey == "" {
		logger.Warn("routing matrix credential is not set, travel times use the geodesic baseline")
	}
	return &MatrixEstimator{
		logger:  logger,
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(cacheTTL, cacheTTL),
	}
}

// Travel is the geodesic baseline leg estimate. The optimizer calls this on
// every candidate scan, so it must stay local and cheap.
func (e *MatrixEstimator) Travel(a, b types.GeoPoint) (float64, float64) {
	return Geodesic(a, b)
}

// RouteTravelTimes returns per-segment minutes and kilometers for the
// consecutive pairs of points. Result slices have len(points)-1 entries.
func (e *MatrixEstimator) RouteTravelTimes(ctx context.Context, points []types.GeoPoint) ([]float64, []float64) {
	if e.apiKey == "" || len(points) < 2 {
		return geodesicSegments(points)
	}

	if minutes, km, ok := e.cachedSegments(points); ok {
		return minutes, km
	}

	matrix, err := e.fetchMatrix(ctx, points)
	if err != nil {
		e.logger.Warn("routing matrix request failed, using geodesic estimates for all segments",
			slog.Any("error", err))
		metrics.Get().MatrixDegradationsTotal.Add(ctx, int64(len(points)-1))
		return geodesicSegments(points)
	}

	minutes := make([]float64, 0, len(points)-1)
	km := make([]float64, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		seg, ok := matrix[[2]int{i, i + 1}]
		if !ok || seg.Minutes <= 0 {
			// The matrix answered but this segment has no walkable route.
			e.logger.Warn("routing matrix returned no route for segment, using geodesic estimate",
				slog.Int("segment", i))
			metrics.Get().MatrixDegradationsTotal.Add(ctx, 1)
			m, d := Geodesic(points[i], points[i+1])
			minutes = append(minutes, m)
			km = append(km, d)
			continue
		}
		e.cache.Set(pairKey(points[i], points[i+1]), seg, cache.DefaultExpiration)
		minutes = append(minutes, seg.Minutes)
		km = append(km, seg.Km)
	}
	return minutes, km
}

// cachedSegments serves the whole route from the pair cache when every
// consecutive segment is present.
func (e *MatrixEstimator) cachedSegments(points []types.GeoPoint) ([]float64, []float64, bool) {
	minutes := make([]float64, 0, len(points)-1)
	km := make([]float64, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		v, ok := e.cache.Get(pairKey(points[i], points[i+1]))
		if !ok {
			return nil, nil, false
		}
		seg := v.(segment)
		minutes = append(minutes, seg.Minutes)
		km = append(km, seg.Km)
	}
	return minutes, km, true
}

type matrixRequest struct {
	Points  []matrixPoint `json:"points"`
	Mode    string        `json:"mode"`
	Sources []int         `json:"sources"`
	Targets []int         `json:"targets"`
}

type matrixPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type matrixResponse struct {
	Routes []matrixRoute `json:"routes"`
}

type matrixRoute struct {
	SourceID int     `json:"source_id"`
	TargetID int     `json:"target_id"`
	Duration float64 `json:"duration"` // seconds
	Distance float64 `json:"distance"` // meters
}

// fetchMatrix posts the full point list once and indexes the answer by
// (source, target).
func (e *MatrixEstimator) fetchMatrix(ctx context.Context, points []types.GeoPoint) (map[[2]int]segment, error) {
	indices := make([]int, len(points))
	reqPoints := make([]matrixPoint, len(points))
	for i, p := range points {
		indices[i] = i
		reqPoints[i] = matrixPoint{Lat: p.Lat, Lon: p.Lon}
	}
	payload, err := json.Marshal(matrixRequest{
		Points:  reqPoints,
		Mode:    travelMode,
		Sources: indices,
		Targets: indices,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	url := fmt.Sprintf("%s/get_dist_matrix?key=%s", e.baseURL, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build matrix request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matrix request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matrix request: unexpected status %s", resp.Status)
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	matrix := make(map[[2]int]segment, len(body.Routes))
	for _, r := range body.Routes {
		if r.SourceID < 0 || r.SourceID >= len(points) || r.TargetID < 0 || r.TargetID >= len(points) {
			continue
		}
		matrix[[2]int{r.SourceID, r.TargetID}] = segment{
			Minutes: r.Duration / 60,
			Km:      r.Distance / 1000,
		}
	}
	return matrix, nil
}

func pairKey(a, b types.GeoPoint) string {
	return fmt.Sprintf("%s|%.6f,%.6f|%.6f,%.6f", travelMode, a.Lat, a.Lon, b.Lat, b.Lon)
}

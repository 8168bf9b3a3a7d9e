package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	RouteRequestsTotal      metric.Int64Counter
	RouteDurationSeconds    metric.Float64Histogram
	SemanticFallbacksTotal  metric.Int64Counter
	MatrixDegradationsTotal metric.Int64Counter
	RouteStopsPerRoute      metric.Int64Histogram
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() { // Ensure this only runs once
		meter := otel.GetMeterProvider().Meter("RoutePlanner")
		var err error
		m := &AppMetrics{}

		m.RouteRequestsTotal, err = meter.Int64Counter(
			"route_requests_total",
			metric.WithDescription("Total number of route generation requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_requests_total: %v", err)
		}

		m.RouteDurationSeconds, err = meter.Float64Histogram(
			"route_duration_seconds",
			metric.WithDescription("Duration of route generation requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_duration_seconds: %v", err)
		}

		m.SemanticFallbacksTotal, err = meter.Int64Counter(
			"semantic_fallbacks_total",
			metric.WithDescription("Total number of requests answered via the semantic fallback"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create semantic_fallbacks_total: %v", err)
		}

		m.MatrixDegradationsTotal, err = meter.Int64Counter(
			"matrix_degradations_total",
			metric.WithDescription("Total number of routing-matrix segments replaced by geodesic estimates"),
			metric.WithUnit("{segment}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create matrix_degradations_total: %v", err)
		}

		m.RouteStopsPerRoute, err = meter.Int64Histogram(
			"route_stops_per_route",
			metric.WithDescription("Number of stops in generated routes"),
			metric.WithUnit("{stop}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_stops_per_route: %v", err)
		}

		appMetrics = m // Assign to global variable
	})
}

// Get returns the globally initialized AppMetrics instance, initializing it
// against the current global MeterProvider on first use.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}

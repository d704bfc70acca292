package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	BackendRequestsTotal   metric.Int64Counter
	BackendRequestDuration metric.Float64Histogram
	BackendErrorsTotal     metric.Int64Counter
	GeocodeRequestsTotal   metric.Int64Counter
	GeocodeCacheHitsTotal  metric.Int64Counter
	ItemsCommittedTotal    metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
	NotificationsPublished metric.Int64Counter
	EventStreamSubscribers metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is installed; before that the global no-op
// provider is used.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-travel-planner")
		m := &AppMetrics{}

		m.BackendRequestsTotal = counter(meter, "backend_requests_total", "Total number of session backend requests", "{request}")
		m.BackendRequestDuration = histogram(meter, "backend_request_duration_seconds", "Duration of session backend requests in seconds")
		m.BackendErrorsTotal = counter(meter, "backend_errors_total", "Total number of failed session backend requests", "{error}")
		m.GeocodeRequestsTotal = counter(meter, "geocode_requests_total", "Total number of geocoding lookups", "{request}")
		m.GeocodeCacheHitsTotal = counter(meter, "geocode_cache_hits_total", "Geocoding lookups served from cache", "{hit}")
		m.ItemsCommittedTotal = counter(meter, "itinerary_items_committed_total", "Items committed to an itinerary by drag and drop", "{item}")
		m.DbQueryDurationSeconds = histogram(meter, "db_query_duration_seconds", "Duration of database queries in seconds")
		m.DbQueryErrorsTotal = counter(meter, "db_query_errors_total", "Total number of database query errors", "{error}")
		m.NotificationsPublished = counter(meter, "notifications_published_total", "Toast notifications published", "{notification}")

		var err error
		m.EventStreamSubscribers, err = meter.Int64UpDownCounter(
			"event_stream_subscribers",
			metric.WithDescription("Open websocket event streams"),
			metric.WithUnit("{connection}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create event_stream_subscribers: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the instruments, initializing them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func counter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

func histogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return h
}

package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	openViews       *prometheus.GaugeVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collection_store_duration_seconds",
		Help:    "Duration of collection store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "collection"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_store_errors_total",
		Help: "Failed collection store operations",
	}, []string{"op", "collection"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notifications shown to views",
	}, []string{"collection"})

	openViews := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "open_views",
		Help: "Views currently held by the registry",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, storeErrors, notifications, openViews, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		storeErrors:     storeErrors,
		notifications:   notifications,
		openViews:       openViews,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveStoreOperation implements repository.StoreObserver.
func (m *MetricsService) ObserveStoreOperation(op, key string, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(op, key).Observe(duration.Seconds())
	if failed {
		m.storeErrors.WithLabelValues(op, key).Inc()
	}
}

// RecordNotification implements NotificationObserver.
func (m *MetricsService) RecordNotification(entity string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(entity).Inc()
}

// SetOpenViews implements ViewObserver.
func (m *MetricsService) SetOpenViews(kind string, count int) {
	if m == nil {
		return
	}
	m.openViews.WithLabelValues(kind).Set(float64(count))
}

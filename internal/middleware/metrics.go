package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "recipes"

// Metrics holds the HTTP and business metrics of the API. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	ratingsTotal    *prometheus.CounterVec
	uploadsTotal    *prometheus.CounterVec
	favoriteChanges *prometheus.CounterVec
}

// NewMetrics registers the metrics on a fresh registry together with the Go
// and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ratingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "ratings_total",
				Help:      "Ratings submitted by star value",
			},
			[]string{"value"},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "image_uploads_total",
				Help:      "Recipe image uploads by result",
			},
			[]string{"result"},
		),
		favoriteChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "favorite_changes_total",
				Help:      "Favorites changes by event type",
			},
			[]string{"event_type"},
		),
	}
}

// Middleware records request counts and latency per route template
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = ToAppError(err).StatusCode()
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.requestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveRating(value int) {
	if m == nil {
		return
	}
	m.ratingsTotal.WithLabelValues(strconv.Itoa(value)).Inc()
}

func (m *Metrics) ObserveUpload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.uploadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFavoriteChange(eventType string) {
	if m == nil {
		return
	}
	m.favoriteChanges.WithLabelValues(eventType).Inc()
}

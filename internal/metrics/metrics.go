// Package metrics exposes Prometheus metrics for the HTTP API and the
// conversion engine.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

// Conversion directions.
const (
	ToHijri     = "to_hijri"
	ToGregorian = "to_gregorian"
)

// Conversion results.
const (
	ResultOK         = "ok"
	ResultOutOfRange = "out_of_range"
	ResultError      = "error"
)

// Metrics holds a private registry so tests and multiple servers in one
// process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	conversions     *prometheus.CounterVec
	tableInfo       *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hijri_conversions_total",
				Help: "Calendar conversions by direction and result",
			},
			[]string{"direction", "result"},
		),
		tableInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hijri_table_info",
				Help: "Loaded month-length table; the value is always 1",
			},
			[]string{"version", "min_year", "max_year"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.conversions,
		m.tableInfo,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled with the chi
// route pattern, so /hijri/date/{date} is one series rather than one per
// date.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveConversion counts one conversion in direction with the outcome
// of err.
func (m *Metrics) ObserveConversion(direction string, err error) {
	m.conversions.WithLabelValues(direction, resultOf(err)).Inc()
}

// SetTable records the table the converter serves from.
func (m *Metrics) SetTable(t *hijri.Table) {
	m.tableInfo.Reset()
	m.tableInfo.WithLabelValues(t.Version, strconv.Itoa(t.MinYear), strconv.Itoa(t.MaxYear)).Set(1)
}

func resultOf(err error) string {
	var re *hijri.RangeError
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &re):
		return ResultOutOfRange
	default:
		return ResultError
	}
}

package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"brevets/internal/acp"
)

// Metrics collects request and calculation counters for the API.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	calculations    *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brevets_request_duration_seconds",
				Help:    "Time spent processing request",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"route"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brevets_requests_total",
				Help: "Total number of requests",
			},
			[]string{"route", "code"},
		),
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brevets_calculations_total",
				Help: "Control time calculations by nominal distance and outcome",
			},
			[]string{"brevet_km", "outcome"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "brevets_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter",
			},
		),
	}

	reg.MustRegister(m.requestDuration, m.requestsTotal, m.calculations, m.rateLimited)
	return m
}

// RecordRequest records one served request. A nil Metrics records nothing.
func (m *Metrics) RecordRequest(route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) recordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) recordCalculation(brevet acp.BrevetDistance, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, acp.ErrOutOfRangeControl):
		outcome = "out_of_range"
	case errors.Is(err, acp.ErrInvalidBrevetDistance):
		outcome = "invalid_brevet"
	case errors.Is(err, acp.ErrMalformedDistance):
		outcome = "malformed_distance"
	case err != nil:
		outcome = "error"
	}
	label := strconv.Itoa(int(brevet))
	if brevet.Validate() != nil {
		// keep label cardinality bounded
		label = "other"
	}
	m.calculations.WithLabelValues(label, outcome).Inc()
}

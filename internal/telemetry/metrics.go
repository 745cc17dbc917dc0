// Package telemetry registers the Prometheus collectors for portal traffic.
package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"campuslens/internal/portal"
)

var (
	portalRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campuslens_portal_requests_total",
		Help: "Portal fetches by operation and outcome.",
	}, []string{"operation", "outcome"})

	portalDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campuslens_portal_request_seconds",
		Help:    "Portal fetch latency including login, by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(portalRequests, portalDuration)
}

// ObservePortal records one portal fetch.
func ObservePortal(operation string, err error, elapsed time.Duration) {
	portalRequests.WithLabelValues(operation, outcomeFor(err)).Inc()
	portalDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, portal.ErrAuthenticationFailed):
		return "auth_failed"
	case errors.Is(err, portal.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, portal.ErrBadShape):
		return "bad_shape"
	default:
		return "error"
	}
}

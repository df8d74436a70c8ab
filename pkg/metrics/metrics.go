// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_reconcile_runs_total",
		Help: "Reconciliation invocations by outcome.",
	}, []string{"outcome"})

	reconcileRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_reconcile_rows_total",
		Help: "Ledger rows touched by reconciliation, by result.",
	}, []string{"result"})

	reconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetrack_reconcile_duration_seconds",
		Help:    "Duration of reconciliation runs.",
		Buckets: prometheus.DefBuckets,
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetrack_http_requests_total",
		Help: "HTTP requests by path and status code.",
	}, []string{"path", "code"})
)

// RecordReconcile records the outcome of one reconciliation run.
func RecordReconcile(success bool, duration time.Duration, inserted, coalesced int) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	reconcileRuns.WithLabelValues(outcome).Inc()
	reconcileDuration.Observe(duration.Seconds())
	reconcileRows.WithLabelValues("inserted").Add(float64(inserted))
	reconcileRows.WithLabelValues("coalesced").Add(float64(coalesced))
}

// RecordHTTP records one served request.
func RecordHTTP(path string, code int) {
	httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

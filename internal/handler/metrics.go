package handler

import (
	"fmt"
	"net/http"

	"github.com/fintrack/fintrack/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		writeError(w, http.StatusServiceUnavailable, "METRICS_UNAVAILABLE", "metrics not configured")
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "fintrack_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "fintrack_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "fintrack_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "fintrack_transactions_created_total %d\n", snap.TransactionsCreated)
	writeMetric(w, "fintrack_transactions_updated_total %d\n", snap.TransactionsUpdated)
	writeMetric(w, "fintrack_transactions_deleted_total %d\n", snap.TransactionsDeleted)

	writeMetric(w, "fintrack_report_duration_seconds_count %d\n", snap.ReportDurationCount)
	writeMetric(w, "fintrack_report_duration_seconds_sum %.6f\n", float64(snap.ReportDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

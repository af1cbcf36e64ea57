package handler

import (
	"log/slog"
	"net/http"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/service"
)

// ReportHandler serves the public aggregate reports.
// Aggregates span every user's transactions.
type ReportHandler struct {
	svc    *service.ReportService
	logger *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// Totals handles GET /api/transactions/totals.
func (h *ReportHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Totals(r.Context(), model.AggregateFilter{})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// Balance handles GET /api/transactions/totals/balance.
func (h *ReportHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Balance(r.Context(), model.AggregateFilter{})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Monthly handles GET /api/transactions/report/monthly.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Monthly(r.Context(), model.AggregateFilter{})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// Annual handles GET /api/transactions/report/annual.
func (h *ReportHandler) Annual(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Annual(r.Context(), model.AggregateFilter{})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/fintrack/fintrack/internal/handler/dto"
	"github.com/fintrack/fintrack/internal/service"
)

// AdminHandler provides admin-only endpoints.
type AdminHandler struct {
	reports  *service.ReportService
	settings dto.SettingsResponse
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
// settings is served as-is and must not carry secrets.
func NewAdminHandler(reports *service.ReportService, settings dto.SettingsResponse, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reports:  reports,
		settings: settings,
		logger:   logger,
	}
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reports.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Settings handles GET /api/admin/settings.
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings)
}

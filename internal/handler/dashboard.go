package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/servicetracker/internal/service"
)

// DashboardHandler serves the aggregate dashboard read
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Load handles GET /api/dashboard
func (h *DashboardHandler) Load(w http.ResponseWriter, r *http.Request) {
	tc := requireTenant(w, r)
	if tc == nil {
		return
	}

	view, err := h.dashboard.Load(r.Context(), tc.User, tc.Business)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"business": map[string]string{
			"name":      view.BusinessName,
			"subdomain": view.BusinessSubdomain,
		},
		"services": toServiceDTOs(view.Services),
		"stats":    view.Stats,
	})
}

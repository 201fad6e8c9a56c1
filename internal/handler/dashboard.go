package handler

import (
	"net/http"

	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// DashboardHandler serves the summary view.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              *logger.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, log *logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardHandler{dashboardService: dashboardService, log: log.With("handler", "dashboard")}
}

// Get handles GET /api/v1/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboardService.Build(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, d)
}

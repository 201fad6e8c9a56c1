package handler

import (
	"net/http"

	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// ActivityHandler serves the activity log.
type ActivityHandler struct {
	activityService *service.ActivityService
	log             *logger.Logger
}

func NewActivityHandler(activityService *service.ActivityService, log *logger.Logger) *ActivityHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityHandler{activityService: activityService, log: log.With("handler", "activity")}
}

// List handles GET /api/v1/activity?limit=100
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := service.ClampLimit(queryInt(r, "limit", service.DefaultActivityLimit), service.DefaultActivityLimit, service.MaxActivityLimit)

	entries, err := h.activityService.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.JSONWithMeta(w, http.StatusOK, entries, limit, int64(len(entries)))
}

package handler

import (
	"net/http"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// SettingsHandler serves the application settings.
type SettingsHandler struct {
	settingsService *service.SettingsService
	log             *logger.Logger
}

func NewSettingsHandler(settingsService *service.SettingsService, log *logger.Logger) *SettingsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsHandler{settingsService: settingsService, log: log.With("handler", "settings")}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, settings)
}

// Save handles PUT /api/v1/settings
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LowStockThreshold *int `json:"low_stock_threshold"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.LowStockThreshold == nil {
		response.Error(w, apierror.ValidationError("low_stock_threshold is required",
			apierror.FieldError{Field: "low_stock_threshold", Message: "required"}))
		return
	}

	saved, err := h.settingsService.Save(r.Context(), model.Settings{LowStockThreshold: *req.LowStockThreshold})
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, saved)
}

// TestAlert handles POST /api/v1/settings/test-alert
func (h *SettingsHandler) TestAlert(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.settingsService.SendTestAlert(r.Context()))
}

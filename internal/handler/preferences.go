package handler

import (
	"net/http"

	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// PreferencesHandler serves the caller's own preferences.
type PreferencesHandler struct {
	preferencesService *service.PreferencesService
	log                *logger.Logger
}

func NewPreferencesHandler(preferencesService *service.PreferencesService, log *logger.Logger) *PreferencesHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PreferencesHandler{preferencesService: preferencesService, log: log.With("handler", "preferences")}
}

func (h *PreferencesHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		response.Error(w, apierror.Unauthorized("preferences require a signed-in user"))
		return "", false
	}
	return *actor, true
}

// Get handles GET /api/v1/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	p, err := h.preferencesService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, p)
}

// Save handles PUT /api/v1/preferences
func (h *PreferencesHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var p model.UserPreferences
	if err := decodeJSON(r, &p); err != nil {
		response.Error(w, err)
		return
	}
	saved, err := h.preferencesService.Save(r.Context(), userID, p)
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, saved)
}

package handler

import (
	"errors"
	"net/http"

	"jersey-stock-api/internal/clients"
	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/pkg/apierror"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
	"jersey-stock-api/pkg/uid"

	"github.com/go-chi/chi/v5"
)

// CallHandler exposes call orchestration and the call log.
type CallHandler struct {
	callService *service.CallService
	log         *logger.Logger
}

func NewCallHandler(callService *service.CallService, log *logger.Logger) *CallHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CallHandler{callService: callService, log: log.With("handler", "calls")}
}

// List handles GET /api/v1/calls
func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	calls, err := h.callService.List(r.Context(), queryInt(r, "limit", service.DefaultCallLimit))
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.JSONWithMeta(w, http.StatusOK, calls, len(calls), int64(len(calls)))
}

// Stats handles GET /api/v1/calls/stats
func (h *CallHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.callService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "")
		return
	}
	response.OK(w, stats)
}

// Get handles GET /api/v1/calls/{id}
func (h *CallHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uid.Normalize(chi.URLParam(r, "id"))
	if !ok {
		response.Error(w, apierror.BadRequest("id must be a valid UUID"))
		return
	}
	call, err := h.callService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "call not found")
		return
	}
	response.OK(w, call)
}

// startCallFailure is returned when the call was logged but the proxy failed.
type startCallFailure struct {
	Error string         `json:"error"`
	Call  *model.CallLog `json:"call"`
}

// Start handles POST /api/v1/calls
func (h *CallHandler) Start(w http.ResponseWriter, r *http.Request) {
	var in service.StartCallInput
	if err := decodeJSON(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	if in.JerseyID != nil {
		id, ok := uid.Normalize(*in.JerseyID)
		if !ok {
			response.Error(w, apierror.ValidationError("jersey_id must be a valid UUID",
				apierror.FieldError{Field: "jersey_id", Message: "invalid"}))
			return
		}
		in.JerseyID = &id
	}
	if in.Source == "" {
		in.Source = "api"
	}

	call, err := h.callService.Start(r.Context(), middleware.ActorFromContext(r.Context()), in)
	if err != nil {
		if call == nil {
			writeServiceError(w, h.log, err, "jersey not found")
			return
		}
		status := http.StatusInternalServerError
		var httpErr *clients.HTTPError
		if errors.As(err, &httpErr) {
			status = http.StatusBadGateway
		}
		response.JSON(w, status, startCallFailure{Error: err.Error(), Call: call})
		return
	}
	response.Created(w, call)
}

package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// CallLogUpdater applies partial call log updates.
type CallLogUpdater interface {
	UpdateCallLog(ctx context.Context, id string, patch model.CallLogPatch) error
}

// CallbackHandler receives asynchronous status reports from the call
// provider. Requests are not authenticated.
type CallbackHandler struct {
	store CallLogUpdater
	log   *logger.Logger
}

// NewCallbackHandler creates the callback receiver. A nil store answers 500.
func NewCallbackHandler(store CallLogUpdater, log *logger.Logger) *CallbackHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CallbackHandler{store: store, log: log.With("handler", "call-callback")}
}

// Callback handles POST /api/call-callback
func (h *CallbackHandler) Callback(w http.ResponseWriter, r *http.Request) {
	body := readLooseJSON(r)

	rawID, ok := body["call_log_id"]
	if !ok || !truthy(rawID) {
		response.Raw(w, http.StatusBadRequest, errorBody{Error: "Missing call_log_id"})
		return
	}
	id := idString(rawID)

	if h.store == nil {
		response.Raw(w, http.StatusInternalServerError, errorBody{Error: "record store is not configured"})
		return
	}

	patch := callbackPatch(body)
	if err := h.store.UpdateCallLog(r.Context(), id, patch); err != nil {
		h.log.Error("callback update failed", "call_log_id", id, "error", err)
		response.Raw(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	h.log.Info("callback applied", "call_log_id", id)
	response.Raw(w, http.StatusOK, map[string]bool{"ok": true})
}

// callbackPatch keeps only the fields the provider actually reported, with
// the types it is allowed to report them in. updated_at is not touched.
func callbackPatch(body map[string]json.RawMessage) model.CallLogPatch {
	var patch model.CallLogPatch

	if s, ok := nonEmptyString(body["status"]); ok {
		status := model.CallStatus(s)
		patch.Status = &status
	}
	if raw, ok := body["duration_seconds"]; ok {
		var f *float64
		if err := json.Unmarshal(raw, &f); err == nil && f != nil && *f >= 0 {
			d := int(math.Round(*f))
			patch.DurationSeconds = &d
		}
	}
	if raw, ok := body["order_placed"]; ok {
		var b *bool
		if err := json.Unmarshal(raw, &b); err == nil && b != nil {
			patch.OrderPlaced = b
		}
	}
	if s, ok := nonEmptyString(body["transcript"]); ok {
		patch.Transcript = &s
	}
	if raw, ok := body["order_details"]; ok && truthy(raw) {
		patch.OrderDetails = raw
	}
	if s, ok := nonEmptyString(body["error_message"]); ok {
		patch.ErrorMessage = &s
	}
	if s, ok := nonEmptyString(body["voiceflow_session_id"]); ok {
		patch.VoiceflowSessionID = &s
	}
	return patch
}

func nonEmptyString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

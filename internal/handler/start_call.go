package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"jersey-stock-api/internal/clients/voiceflow"
	"jersey-stock-api/pkg/logger"
	"jersey-stock-api/pkg/response"
)

// DryRunSessionID is returned by dry-run start-call requests.
const DryRunSessionID = "dry_run_session"

// CallProvider places calls with the external provider.
type CallProvider interface {
	StartCall(ctx context.Context, in voiceflow.StartCallRequest) (*voiceflow.Response, error)
}

// StartCallHandler is the outbound call proxy. It answers in plain JSON
// ({error} on failure) rather than the v1 envelope, relaying the provider's
// own body on success.
type StartCallHandler struct {
	provider      CallProvider
	publicBaseURL string
	log           *logger.Logger
}

// NewStartCallHandler creates the proxy handler. A nil provider means the
// provider URL or credential is not configured.
func NewStartCallHandler(provider CallProvider, log *logger.Logger) *StartCallHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StartCallHandler{provider: provider, log: log.With("handler", "start-call")}
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

type dryRunBody struct {
	OK         bool   `json:"ok"`
	SessionID  string `json:"session_id"`
	Transcript string `json:"transcript"`
}

// WithPublicBaseURL fixes the origin used in callback URLs. Without it the
// origin is taken from the request's forwarded headers or Host.
func (h *StartCallHandler) WithPublicBaseURL(base string) *StartCallHandler {
	h.publicBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	return h
}

// StartCall handles POST /api/start-call
func (h *StartCallHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	body := readLooseJSON(r)

	callLogID, hasID := body["call_log_id"]
	orderDetails, hasDetails := body["order_details"]
	if !hasID || !truthy(callLogID) || !hasDetails || !truthy(orderDetails) {
		response.Raw(w, http.StatusBadRequest, errorBody{Error: "Missing call_log_id or order_details"})
		return
	}

	if dryRun, ok := body["dry_run"]; ok && truthy(dryRun) {
		response.Raw(w, http.StatusOK, dryRunBody{OK: true, SessionID: DryRunSessionID, Transcript: ""})
		return
	}

	if h.provider == nil {
		response.Raw(w, http.StatusInternalServerError, errorBody{Error: voiceflow.ErrNotConfigured.Error()})
		return
	}

	req := voiceflow.StartCallRequest{
		CallLogID:    idString(callLogID),
		OrderDetails: orderDetails,
		CallbackURL:  h.callbackURL(r),
	}

	resp, err := h.provider.StartCall(r.Context(), req)
	if err != nil {
		h.log.Error("provider call failed", "call_log_id", req.CallLogID, "error", err)
		response.Raw(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	if !resp.OK() {
		response.Raw(w, resp.StatusCode, errorBody{Error: "Provider call failed", Details: resp.Body})
		return
	}

	h.log.Info("call forwarded", "call_log_id", req.CallLogID)
	response.Raw(w, http.StatusOK, resp.Body)
}

// callbackURL points the provider back at this deployment's callback
// receiver, honouring proxy headers.
func (h *StartCallHandler) callbackURL(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL + "/api/call-callback"
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	return proto + "://" + host + "/api/call-callback"
}

// readLooseJSON decodes a JSON object body. Anything unreadable yields an
// empty object so the caller's required-field checks answer with 400.
func readLooseJSON(r *http.Request) map[string]json.RawMessage {
	defer r.Body.Close()
	out := map[string]json.RawMessage{}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return map[string]json.RawMessage{}
	}
	return out
}

// truthy reports whether a JSON value is present and not null, false, 0 or "".
func truthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// idString renders a JSON string or number id as plain text.
func idString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strconv.Quote(string(raw))
}

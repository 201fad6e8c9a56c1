package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jersey-stock-api/internal/clients/voiceflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerSpy struct {
	calls []voiceflow.StartCallRequest
	resp  *voiceflow.Response
	err   error
}

func (p *providerSpy) StartCall(_ context.Context, in voiceflow.StartCallRequest) (*voiceflow.Response, error) {
	p.calls = append(p.calls, in)
	return p.resp, p.err
}

func postStartCall(t *testing.T, h *StartCallHandler, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/start-call", strings.NewReader(body))
	req.Host = "stock.example.com"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.StartCall(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestStartCall_MissingFields(t *testing.T) {
	spy := &providerSpy{}
	h := NewStartCallHandler(spy, nil)

	for _, body := range []string{
		`{"call_log_id":"abc"}`,
		`{"order_details":{"quantity":1}}`,
		`{"call_log_id":"","order_details":{"quantity":1}}`,
		`{"call_log_id":"abc","order_details":null}`,
		`not json`,
	} {
		rec, out := postStartCall(t, h, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Missing call_log_id or order_details", out["error"])
	}
	assert.Empty(t, spy.calls)
}

func TestStartCall_DryRunNeverContactsProvider(t *testing.T) {
	spy := &providerSpy{err: errors.New("must not be called")}

	for name, h := range map[string]*StartCallHandler{
		"configured":   NewStartCallHandler(spy, nil),
		"unconfigured": NewStartCallHandler(nil, nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec, out := postStartCall(t, h, `{"call_log_id":"abc","order_details":{"quantity":2},"dry_run":true}`, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, true, out["ok"])
			assert.Equal(t, "dry_run_session", out["session_id"])
			assert.Equal(t, "", out["transcript"])
		})
	}
	assert.Empty(t, spy.calls)
}

func TestStartCall_Unconfigured(t *testing.T) {
	h := NewStartCallHandler(nil, nil)

	rec, out := postStartCall(t, h, `{"call_log_id":"abc","order_details":{"quantity":2}}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, voiceflow.ErrNotConfigured.Error(), out["error"])
}

func TestStartCall_ForwardsToProvider(t *testing.T) {
	spy := &providerSpy{resp: &voiceflow.Response{
		StatusCode: http.StatusAccepted,
		Body:       json.RawMessage(`{"session_id":"vf-1","transcript":"hello"}`),
	}}
	h := NewStartCallHandler(spy, nil)

	rec, out := postStartCall(t, h, `{"call_log_id":"abc","order_details":{"quantity":2}}`, map[string]string{
		"X-Forwarded-Host":  "public.example.com",
		"X-Forwarded-Proto": "http",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vf-1", out["session_id"])
	assert.Equal(t, "hello", out["transcript"])

	require.Len(t, spy.calls, 1)
	assert.Equal(t, "abc", spy.calls[0].CallLogID)
	assert.JSONEq(t, `{"quantity":2}`, string(spy.calls[0].OrderDetails))
	assert.Equal(t, "http://public.example.com/api/call-callback", spy.calls[0].CallbackURL)
}

func TestStartCall_CallbackURLDefaults(t *testing.T) {
	spy := &providerSpy{resp: &voiceflow.Response{StatusCode: http.StatusOK, Body: json.RawMessage(`{}`)}}
	h := NewStartCallHandler(spy, nil)

	postStartCall(t, h, `{"call_log_id":42,"order_details":{"quantity":1}}`, nil)

	require.Len(t, spy.calls, 1)
	assert.Equal(t, "42", spy.calls[0].CallLogID)
	assert.Equal(t, "https://stock.example.com/api/call-callback", spy.calls[0].CallbackURL)
}

func TestStartCall_ProviderRejects(t *testing.T) {
	spy := &providerSpy{resp: &voiceflow.Response{
		StatusCode: http.StatusUnprocessableEntity,
		Body:       json.RawMessage(`{"raw":"bad number"}`),
	}}
	h := NewStartCallHandler(spy, nil)

	rec, out := postStartCall(t, h, `{"call_log_id":"abc","order_details":{"quantity":2}}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Provider call failed", out["error"])
	assert.Equal(t, map[string]interface{}{"raw": "bad number"}, out["details"])
}

func TestStartCall_TransportError(t *testing.T) {
	spy := &providerSpy{err: errors.New("dial tcp: connection refused")}
	h := NewStartCallHandler(spy, nil)

	rec, out := postStartCall(t, h, `{"call_log_id":"abc","order_details":{"quantity":2}}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "dial tcp: connection refused", out["error"])
}

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		`null`:   false,
		`false`:  false,
		`0`:      false,
		`""`:     false,
		`true`:   true,
		`1`:      true,
		`"x"`:    true,
		`{}`:     true,
		`[]`:     true,
		`broken`: false,
	}
	for raw, want := range tests {
		assert.Equal(t, want, truthy(json.RawMessage(raw)), raw)
	}
}

func TestStartCall_PublicBaseURLOverridesRequestHost(t *testing.T) {
	spy := &providerSpy{resp: &voiceflow.Response{StatusCode: http.StatusOK, Body: json.RawMessage(`{}`)}}
	h := NewStartCallHandler(spy, nil).WithPublicBaseURL(" https://stock.example.com/ ")

	req := httptest.NewRequest(http.MethodPost, "/api/start-call", strings.NewReader(`{"call_log_id":"abc","order_details":{"quantity":1}}`))
	req.Host = "127.0.0.1:8080"
	req.Header.Set("X-Forwarded-Host", "internal.lan")
	h.StartCall(httptest.NewRecorder(), req)

	require.Len(t, spy.calls, 1)
	assert.Equal(t, "https://stock.example.com/api/call-callback", spy.calls[0].CallbackURL)
}

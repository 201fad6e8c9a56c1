package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingUpdater struct{}

func (failingUpdater) UpdateCallLog(context.Context, string, model.CallLogPatch) error {
	return errors.New("connection reset")
}

func postCallback(t *testing.T, h *CallbackHandler, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/call-callback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func newCallbackStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "callback.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCallback_UpdatesOnlyReportedFields(t *testing.T) {
	store := newCallbackStore(t)
	ctx := context.Background()

	call, err := store.CreateCallLog(ctx, model.CallLog{
		PlayerName:   "Jalen",
		Edition:      "Icon",
		Size:         "48",
		Status:       model.CallInProgress,
		OrderDetails: json.RawMessage(`{"quantity":3}`),
	})
	require.NoError(t, err)
	before, err := store.GetCallLog(ctx, call.ID)
	require.NoError(t, err)

	h := NewCallbackHandler(store, nil)
	rec, out := postCallback(t, h, `{"call_log_id":"`+call.ID+`","status":"completed","duration_seconds":120}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ok"])

	after, err := store.GetCallLog(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallCompleted, after.Status)
	require.NotNil(t, after.DurationSeconds)
	assert.Equal(t, 120, *after.DurationSeconds)

	after.Status = before.Status
	after.DurationSeconds = before.DurationSeconds
	assert.Equal(t, before, after)
}

func TestCallbackPatch(t *testing.T) {
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"call_log_id": "abc",
		"status": "",
		"duration_seconds": "soon",
		"order_placed": true,
		"transcript": "Confirmed three jerseys",
		"order_details": {"po": "PO-7"},
		"error_message": "",
		"voiceflow_session_id": "vf-9",
		"updated_at": "2020-01-01T00:00:00Z"
	}`), &body))

	patch := callbackPatch(body)

	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.DurationSeconds)
	require.NotNil(t, patch.OrderPlaced)
	assert.True(t, *patch.OrderPlaced)
	require.NotNil(t, patch.Transcript)
	assert.Equal(t, "Confirmed three jerseys", *patch.Transcript)
	assert.JSONEq(t, `{"po":"PO-7"}`, string(patch.OrderDetails))
	assert.Nil(t, patch.ErrorMessage)
	require.NotNil(t, patch.VoiceflowSessionID)
	assert.Equal(t, "vf-9", *patch.VoiceflowSessionID)
}

func TestCallbackPatch_Duration(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{raw: `120`, want: intPtr(120)},
		{raw: `120.6`, want: intPtr(121)},
		{raw: `120.4`, want: intPtr(120)},
		{raw: `0`, want: intPtr(0)},
		{raw: `-3`, want: nil},
		{raw: `null`, want: nil},
	}

	for _, tt := range tests {
		patch := callbackPatch(map[string]json.RawMessage{"duration_seconds": json.RawMessage(tt.raw)})
		assert.Equal(t, tt.want, patch.DurationSeconds, tt.raw)
	}

	patch := callbackPatch(map[string]json.RawMessage{"order_placed": json.RawMessage(`null`)})
	assert.Nil(t, patch.OrderPlaced)
}

func intPtr(n int) *int { return &n }

func TestCallback_MissingID(t *testing.T) {
	h := NewCallbackHandler(failingUpdater{}, nil)

	for _, body := range []string{`{"status":"completed"}`, `{"call_log_id":""}`, `{}`, `garbage`} {
		rec, out := postCallback(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Missing call_log_id", out["error"])
	}
}

func TestCallback_StoreFailures(t *testing.T) {
	rec, out := postCallback(t, NewCallbackHandler(nil, nil), `{"call_log_id":"abc","status":"completed"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, out["error"])

	rec, out = postCallback(t, NewCallbackHandler(failingUpdater{}, nil), `{"call_log_id":"abc","status":"completed"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "connection reset", out["error"])
}

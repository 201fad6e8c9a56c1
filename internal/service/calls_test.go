package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jersey-stock-api/internal/clients"
	"jersey-stock-api/internal/clients/callproxy"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallService(t *testing.T, env *testEnv, handler http.HandlerFunc) *CallService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	proxy := callproxy.New(nil, callproxy.Config{URL: srv.URL, Timeout: 5 * time.Second})
	return NewCallService(env.store, env.store, proxy, nil)
}

func TestCallService_StartSuccess(t *testing.T) {
	env := newTestEnv(t)
	row := env.seed(t, model.Jersey{PlayerName: "Jalen Brown", Edition: model.EditionCity, Size: "50"})

	var got map[string]json.RawMessage
	calls := newCallService(t, env, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"session_id":"sess-42","transcript":"hello"}`))
	})

	call, err := calls.Start(context.Background(), strPtr("coach@example.com"), StartCallInput{JerseyID: &row.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, model.CallInProgress, call.Status)
	assert.Equal(t, "sess-42", call.VoiceflowSessionID)
	assert.JSONEq(t, `"`+call.ID+`"`, string(got["call_log_id"]))

	var details model.OrderDetails
	require.NoError(t, json.Unmarshal(got["order_details"], &details))
	assert.Equal(t, "Jalen Brown", details.PlayerName)
	assert.Equal(t, "City", details.Edition)
	assert.Equal(t, "50", details.Size)
	assert.Equal(t, 2, details.Quantity)

	stored, err := env.store.GetCallLog(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallInProgress, stored.Status)
	assert.Equal(t, "sess-42", stored.VoiceflowSessionID)
	assert.Equal(t, "hello", stored.Transcript)
	require.NotNil(t, stored.JerseyID)
	assert.Equal(t, row.ID, *stored.JerseyID)
	require.NotNil(t, stored.InitiatedBy)
	assert.Equal(t, "coach@example.com", *stored.InitiatedBy)
}

func TestCallService_ProxyFailureMarksCallFailed(t *testing.T) {
	env := newTestEnv(t)
	calls := newCallService(t, env, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"Provider call failed"}`))
	})

	call, err := calls.Start(context.Background(), nil, StartCallInput{PlayerName: "Tatum"})
	require.Error(t, err)
	require.NotNil(t, call)

	var httpErr *clients.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)

	stored, err := env.store.GetCallLog(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
	assert.Equal(t, "Icon", stored.Edition)
	assert.Equal(t, "48", stored.Size)
}

type failingCallInserts struct {
	repository.CallLogRepository
}

func (failingCallInserts) CreateCallLog(context.Context, model.CallLog) (*model.CallLog, error) {
	return nil, errors.New("insert rejected")
}

func TestCallService_InsertFailureAbortsBeforeProxy(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("proxy must not be called when the call log cannot be created")
	}))
	t.Cleanup(srv.Close)
	proxy := callproxy.New(nil, callproxy.Config{URL: srv.URL, Timeout: 5 * time.Second})
	calls := NewCallService(failingCallInserts{env.store}, env.store, proxy, nil)

	call, err := calls.Start(context.Background(), nil, StartCallInput{PlayerName: "Tatum"})
	require.Error(t, err)
	assert.Nil(t, call)
	assert.Contains(t, err.Error(), "insert rejected")

	list, err := env.store.ListCallLogs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCallService_TransportFailureMarksCallFailed(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	proxy := callproxy.New(nil, callproxy.Config{URL: url, Timeout: 5 * time.Second})
	calls := NewCallService(env.store, env.store, proxy, nil)

	call, err := calls.Start(context.Background(), nil, StartCallInput{PlayerName: "Tatum"})
	require.Error(t, err)
	require.NotNil(t, call)

	var httpErr *clients.HTTPError
	assert.False(t, errors.As(err, &httpErr), "network failures are not upstream status errors")
	assert.Equal(t, model.CallFailed, call.Status)

	stored, err := env.store.GetCallLog(context.Background(), call.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
}

func TestCallService_StartValidation(t *testing.T) {
	env := newTestEnv(t)
	calls := newCallService(t, env, func(w http.ResponseWriter, r *http.Request) {
		t.Error("proxy must not be called")
	})

	_, err := calls.Start(context.Background(), nil, StartCallInput{PlayerName: "  "})
	assert.ErrorIs(t, err, ErrMissingPlayer)

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = calls.Start(context.Background(), nil, StartCallInput{JerseyID: &missing})
	assert.True(t, IsNotFound(err))

	list, err := calls.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing logged for rejected requests")
}

func TestCallService_Stats(t *testing.T) {
	env := newTestEnv(t)
	calls := newCallService(t, env, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := calls.Start(context.Background(), nil, StartCallInput{PlayerName: "Tatum"})
	require.NoError(t, err)

	stats, err := calls.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.InProgress)
}

func TestStaleCallMonitor_RunNow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	call, err := env.store.CreateCallLog(ctx, model.CallLog{PlayerName: "Tatum", Edition: "City", Size: "52", Status: model.CallInProgress})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	report := NewStaleCallMonitor(env.store, StaleCallConfig{StaleAfter: time.Millisecond}, nil)
	stale, err := report.RunNow(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	stored, err := env.store.GetCallLog(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallInProgress, stored.Status, "reporting only by default")

	reaper := NewStaleCallMonitor(env.store, StaleCallConfig{StaleAfter: time.Millisecond, Reap: true}, nil)
	reaped, err := reaper.RunNow(ctx)
	require.NoError(t, err)
	require.Len(t, reaped, 1)
	assert.Equal(t, model.CallFailed, reaped[0].Status)

	stored, err = env.store.GetCallLog(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "no callback received")
}

func TestStaleCallMonitor_StartStop(t *testing.T) {
	env := newTestEnv(t)
	m := NewStaleCallMonitor(env.store, StaleCallConfig{CheckInterval: time.Hour}, nil)

	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}

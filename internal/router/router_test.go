package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jersey-stock-api/internal/cache"
	"jersey-stock-api/internal/handler"
	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, configure func(*Config)) http.Handler {
	t.Helper()

	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "router.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	settings := service.NewSettingsService(store, c, time.Minute, nil, nil)
	activity := service.NewActivityService(store, nil)
	inventory := service.NewInventoryService(service.InventoryDeps{
		Repo:     store,
		Settings: settings,
		Activity: activity,
		Snapshot: service.NewSnapshot(c, time.Minute, nil),
	}, nil)

	cfg := Config{
		Handler:          handler.New("jersey-stock-api", "test", map[string]handler.Pinger{"store": store}),
		InventoryHandler: handler.NewInventoryHandler(inventory, nil),
		SettingsHandler:  handler.NewSettingsHandler(settings, nil),
		ActivityHandler:  handler.NewActivityHandler(activity, nil),
		StartCallHandler: handler.NewStartCallHandler(nil, nil),
		CallbackHandler:  handler.NewCallbackHandler(store, nil),
	}
	if configure != nil {
		configure(&cfg)
	}
	return New(cfg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRouter_HealthEndpoints(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, r, http.MethodGet, "/api/v1/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_InventoryFlow(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/v1/inventory", `{"player_name":"Jalen","edition":"Icon","size":"48","qty_inventory":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID           string `json:"id"`
		QtyInventory int    `json:"qty_inventory"`
	}
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.QtyInventory)

	rec = do(t, r, http.MethodPost, "/api/v1/inventory/"+created.ID+"/adjust", `{"qty_inventory_delta":-5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var adjusted struct {
		QtyInventory int `json:"qty_inventory"`
	}
	decodeData(t, rec, &adjusted)
	assert.Equal(t, 0, adjusted.QtyInventory)

	rec = do(t, r, http.MethodGet, "/api/v1/activity", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Action string `json:"action"`
	}
	decodeData(t, rec, &entries)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []string{"inventory_update", "low_stock_alert"}, actions)

	rec = do(t, r, http.MethodGet, "/api/v1/inventory/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/inventory/6f1c1f5e-8a59-4c1e-9a3e-5f0a3f6f9d11", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AuthGuardsV1Only(t *testing.T) {
	auth := middleware.NewAuthMiddleware(middleware.AuthConfig{Secret: "s3cret"}, nil)
	r := newTestRouter(t, func(cfg *Config) { cfg.AuthMiddleware = auth })

	rec := do(t, r, http.MethodGet, "/api/v1/inventory", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/start-call", `{"call_log_id":"abc","order_details":{"quantity":1},"dry_run":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dry_run_session")

	rec = do(t, r, http.MethodPost, "/api/call-callback", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RateLimitCoversV1Only(t *testing.T) {
	limit, err := middleware.NewRateLimiter("1-M")
	require.NoError(t, err)
	r := newTestRouter(t, func(cfg *Config) { cfg.RateLimit = limit })

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/inventory", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, r, http.MethodGet, "/api/v1/inventory", "").Code)

	for i := 0; i < 3; i++ {
		rec := do(t, r, http.MethodPost, "/api/start-call", `{"call_log_id":"abc","order_details":{"quantity":1},"dry_run":true}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = do(t, r, http.MethodPost, "/api/call-callback", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

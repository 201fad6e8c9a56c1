package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"jersey-stock-api/internal/model"

	"github.com/stretchr/testify/assert"
)

func testPayload() Payload {
	return Payload{LowStockDetails: model.LowStockDetails{
		ID:           "row-1",
		PlayerName:   "Jalen Brown",
		Edition:      model.EditionIcon,
		Size:         "48",
		QtyInventory: 1,
	}}
}

func TestNotifyLowStock_Unconfigured(t *testing.T) {
	d := NewDispatcher(nil, Config{})

	res := d.NotifyLowStock(context.Background(), testPayload())

	assert.Equal(t, StatusSkipped, res.Status)
	assert.False(t, d.Configured())
}

func TestNotifyLowStock_Delivered(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "row-1", body["id"])
		assert.Equal(t, "Jalen Brown", body["player_name"])
		assert.Equal(t, float64(1), body["qty_inventory"])
		_, hasMessage := body["message"]
		assert.False(t, hasMessage)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res := NewDispatcher(nil, Config{WebhookURL: srv.URL}).NotifyLowStock(context.Background(), testPayload())

	assert.Equal(t, StatusDelivered, res.Status)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNotifyLowStock_FailureIsReportedOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res := NewDispatcher(nil, Config{WebhookURL: srv.URL}).NotifyLowStock(context.Background(), testPayload())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, int32(1), calls.Load(), "no retry")
}

func TestNotifyLowStock_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewDispatcher(nil, Config{WebhookURL: url}).NotifyLowStock(context.Background(), testPayload())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Zero(t, res.StatusCode)
}

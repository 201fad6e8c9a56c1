package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jersey-stock-api/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestInterpreter_UnconfiguredUsesLocal(t *testing.T) {
	interp := NewInterpreter(nil, Config{})

	intent, source := interp.Interpret(context.Background(), "add 5 Jalen")

	assert.Equal(t, SourceLocal, source)
	assert.Equal(t, model.IntentAdjust, intent.Type)
	assert.Equal(t, 5, intent.QtyInventoryDelta)
}

func TestInterpreter_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer nlp-key", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "give tatum two more", body["transcript"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"adjust","player_name":" Tatum ","edition":"City","qty_inventory_delta":2}`))
	}))
	defer srv.Close()

	interp := NewInterpreter(nil, Config{URL: srv.URL, APIKey: "nlp-key"})
	intent, source := interp.Interpret(context.Background(), "give tatum two more")

	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, model.IntentAdjust, intent.Type)
	assert.Equal(t, "Tatum", intent.PlayerName)
	assert.Equal(t, "City", intent.Edition)
	assert.Equal(t, 2, intent.QtyInventoryDelta)
}

func TestInterpreter_RemoteFailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("definitely not json"))
			},
		},
		{
			name: "unrecognised type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"type":"dance"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			interp := NewInterpreter(nil, Config{URL: srv.URL, APIKey: "k"})
			intent, source := interp.Interpret(context.Background(), "order 3 Jalen jerseys")

			assert.Equal(t, SourceLocal, source)
			assert.Equal(t, model.IntentOrder, intent.Type)
			assert.Equal(t, 3, intent.OrderQuantity)
		})
	}
}

// Package notify delivers low-stock alerts to the configured webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/logger"
)

type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Result describes one dispatch attempt.
type Result struct {
	Status     Status `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Payload is the webhook body.
type Payload struct {
	model.LowStockDetails
	Message string `json:"message,omitempty"`
}

type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

// Dispatcher posts low-stock payloads. The zero webhook URL turns every call
// into a no-op.
type Dispatcher struct {
	log        *logger.Logger
	url        string
	httpClient *http.Client
}

func NewDispatcher(log *logger.Logger, cfg Config) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		log:        log.With("component", "NotifyDispatcher"),
		url:        cfg.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the transport.
func (d *Dispatcher) WithHTTPClient(hc *http.Client) *Dispatcher {
	d.httpClient = hc
	return d
}

// Configured reports whether a webhook URL is set.
func (d *Dispatcher) Configured() bool {
	return d.url != ""
}

// NotifyLowStock sends one POST. It is attempted once and never returns an
// error; failures are logged and reported in the Result.
func (d *Dispatcher) NotifyLowStock(ctx context.Context, p Payload) Result {
	if !d.Configured() {
		return Result{Status: StatusSkipped}
	}

	res := d.post(ctx, p)
	if res.Status == StatusFailed {
		d.log.Warn("low stock webhook failed", "id", p.ID, "status_code", res.StatusCode, "error", res.Error)
	} else {
		d.log.Info("low stock webhook delivered", "id", p.ID, "player", p.PlayerName, "qty", p.QtyInventory)
	}
	return res
}

func (d *Dispatcher) post(ctx context.Context, p Payload) Result {
	body, err := json.Marshal(p)
	if err != nil {
		return Result{Status: StatusFailed, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return Result{Status: StatusFailed, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Result{Status: StatusFailed, Error: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Status: StatusFailed, StatusCode: resp.StatusCode, Error: fmt.Sprintf("webhook returned %d", resp.StatusCode)}
	}
	return Result{Status: StatusDelivered, StatusCode: resp.StatusCode}
}

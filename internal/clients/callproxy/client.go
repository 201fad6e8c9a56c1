// Package callproxy is the orchestrator's client for POST /api/start-call.
package callproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jersey-stock-api/internal/clients"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/logger"
)

type Config struct {
	URL     string
	Timeout time.Duration
}

// Result is what the proxy reported for a started call.
type Result struct {
	SessionID  string
	Transcript string
	Raw        json.RawMessage
}

type startCallRequest struct {
	CallLogID    string             `json:"call_log_id"`
	OrderDetails model.OrderDetails `json:"order_details"`
	DryRun       bool               `json:"dry_run,omitempty"`
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	dryRun     bool
}

func New(log *logger.Logger, cfg Config) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Client{
		log:        log.With("client", "CallProxyClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHTTPClient swaps the transport.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithDryRun makes every request a dry run.
func (c *Client) WithDryRun(dryRun bool) *Client {
	c.dryRun = dryRun
	return c
}

// StartCall asks the proxy to place the call. Non-2xx answers come back as
// *clients.HTTPError.
func (c *Client) StartCall(ctx context.Context, callLogID string, details model.OrderDetails) (*Result, error) {
	payload, err := json.Marshal(startCallRequest{CallLogID: callLogID, OrderDetails: details, DryRun: c.dryRun})
	if err != nil {
		return nil, fmt.Errorf("failed to encode start-call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build start-call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("start-call request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read start-call response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, clients.ParseHTTPError("call proxy", resp.StatusCode, body)
	}

	res := &Result{Raw: json.RawMessage(body)}
	var fields struct {
		SessionID          string `json:"session_id"`
		VoiceflowSessionID string `json:"voiceflow_session_id"`
		Transcript         string `json:"transcript"`
	}
	if err := json.Unmarshal(body, &fields); err == nil {
		res.SessionID = fields.SessionID
		if res.SessionID == "" {
			res.SessionID = fields.VoiceflowSessionID
		}
		res.Transcript = fields.Transcript
	}
	c.log.Debug("call started", "call_log_id", callLogID, "session_id", res.SessionID)
	return res, nil
}

// Package voiceflow talks to the outbound call provider on behalf of the
// start-call proxy. The provider credential never leaves this process.
package voiceflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jersey-stock-api/pkg/logger"
)

// ErrNotConfigured is returned by New when the URL or key is missing.
var ErrNotConfigured = errors.New("server call API not configured (VOICEFLOW_CALL_API_URL/KEY missing)")

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// StartCallRequest is the body forwarded to the provider.
type StartCallRequest struct {
	CallLogID    string          `json:"call_log_id"`
	OrderDetails json.RawMessage `json:"order_details"`
	CallbackURL  string          `json:"callback_url"`
}

// Response is the provider's answer. Body holds the provider JSON, or
// {"raw": text} when the body was not JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// New builds a provider client. It fails with ErrNotConfigured when either the
// URL or the key is empty.
func New(log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		log:        log.With("client", "VoiceflowClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// NewWithHTTPClient is New with a caller-supplied transport.
func NewWithHTTPClient(log *logger.Logger, cfg Config, hc *http.Client) (*Client, error) {
	c, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if hc != nil {
		c.httpClient = hc
	}
	return c, nil
}

// StartCall posts the request with bearer auth. Only transport failures are
// returned as errors; any HTTP status comes back in the Response.
func (c *Client) StartCall(ctx context.Context, in StartCallRequest) (*Response, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("provider request failed", "call_log_id", in.CallLogID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: wrapBody(text)}
	if !out.OK() {
		c.log.Warn("provider rejected call", "call_log_id", in.CallLogID, "status", resp.StatusCode)
	}
	return out, nil
}

func wrapBody(text []byte) json.RawMessage {
	if json.Valid(text) {
		return json.RawMessage(text)
	}
	raw, _ := json.Marshal(map[string]string{"raw": string(text)})
	return raw
}

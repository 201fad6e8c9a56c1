// Package voice turns spoken inventory commands into structured intents.
package voice

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

	"jersey-stock-api/internal/clients"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/logger"
)

// Source records which path produced an intent.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Interpreter asks the remote intent endpoint first when one is configured
// and falls back to the local rules on any failure.
type Interpreter struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func NewInterpreter(log *logger.Logger, cfg Config) *Interpreter {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Interpreter{
		log:        log.With("component", "VoiceInterpreter"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHTTPClient swaps the transport.
func (i *Interpreter) WithHTTPClient(hc *http.Client) *Interpreter {
	i.httpClient = hc
	return i
}

func (i *Interpreter) remoteConfigured() bool {
	return i.cfg.URL != "" && i.cfg.APIKey != ""
}

// Interpret never fails: the worst case is an unknown intent.
func (i *Interpreter) Interpret(ctx context.Context, transcript string) (model.Intent, Source) {
	if i.remoteConfigured() {
		intent, err := i.interpretRemote(ctx, transcript)
		if err == nil {
			return intent, SourceRemote
		}
		i.log.Warn("remote intent failed, using local rules", "error", err)
	}
	return InterpretLocal(transcript), SourceLocal
}

var errNoIntentType = errors.New("remote intent missing type")

func (i *Interpreter) interpretRemote(ctx context.Context, transcript string) (model.Intent, error) {
	payload, err := json.Marshal(map[string]string{"transcript": transcript})
	if err != nil {
		return model.Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return model.Intent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+i.cfg.APIKey)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return model.Intent{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Intent{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Intent{}, clients.ParseHTTPError("voice nlp", resp.StatusCode, body)
	}

	var intent model.Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return model.Intent{}, fmt.Errorf("failed to decode intent: %w", err)
	}
	switch intent.Type {
	case model.IntentAdjust, model.IntentOrder, model.IntentUnknown:
	default:
		return model.Intent{}, errNoIntentType
	}
	intent.PlayerName = strings.TrimSpace(intent.PlayerName)
	return intent, nil
}

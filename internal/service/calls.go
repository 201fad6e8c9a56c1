package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jersey-stock-api/internal/clients/callproxy"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/logger"
)

const (
	DefaultCallLimit = 50
	MaxCallLimit     = 200
)

// CallStarter places an outbound call through the start-call proxy.
type CallStarter interface {
	StartCall(ctx context.Context, callLogID string, details model.OrderDetails) (*callproxy.Result, error)
}

// StartCallInput describes the item to reorder. When JerseyID is set, empty
// descriptor fields are filled from that row.
type StartCallInput struct {
	JerseyID   *string `json:"jersey_id"`
	PlayerName string  `json:"player_name"`
	Edition    string  `json:"edition"`
	Size       string  `json:"size"`
	Quantity   int     `json:"quantity"`
	Priority   string  `json:"priority"`
	Notes      string  `json:"notes"`
	Source     string  `json:"source"`
}

// CallService orchestrates one outbound call per Start: log it, mark it in
// progress, hand it to the proxy and record the outcome. It does not retry
// and does not guard against concurrent calls for the same row.
type CallService struct {
	repo    repository.CallLogRepository
	jerseys repository.InventoryRepository
	starter CallStarter
	log     *logger.Logger
}

func NewCallService(repo repository.CallLogRepository, jerseys repository.InventoryRepository, starter CallStarter, log *logger.Logger) *CallService {
	if log == nil {
		log = logger.Nop()
	}
	return &CallService{
		repo:    repo,
		jerseys: jerseys,
		starter: starter,
		log:     log.With("service", "CallService"),
	}
}

// Start runs the orchestration. The returned log reflects the last persisted
// state even when an error is returned, except when the initial insert fails.
func (s *CallService) Start(ctx context.Context, actor *string, in StartCallInput) (*model.CallLog, error) {
	if err := s.resolveDescriptor(ctx, &in); err != nil {
		return nil, err
	}

	details := model.OrderDetails{
		PlayerName: in.PlayerName,
		Edition:    in.Edition,
		Size:       in.Size,
		Quantity:   max(in.Quantity, 1),
		Priority:   in.Priority,
		Notes:      in.Notes,
		Source:     in.Source,
	}
	rawDetails, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order details: %w", err)
	}

	call, err := s.repo.CreateCallLog(ctx, model.CallLog{
		JerseyID:     in.JerseyID,
		PlayerName:   in.PlayerName,
		Edition:      in.Edition,
		Size:         in.Size,
		Status:       model.CallInitiated,
		InitiatedBy:  actor,
		OrderDetails: rawDetails,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create call log: %w", err)
	}
	log := s.log.With("call_log_id", call.ID)

	inProgress := model.CallInProgress
	if err := s.repo.UpdateCallLog(ctx, call.ID, model.CallLogPatch{Status: &inProgress, Touch: true}); err != nil {
		log.Warn("failed to mark call in progress", "error", err)
	} else {
		call.Status = inProgress
	}

	res, callErr := s.starter.StartCall(ctx, call.ID, details)
	if callErr != nil {
		failed := model.CallFailed
		msg := callErr.Error()
		if msg == "" {
			msg = "call failed"
		}
		patch := model.CallLogPatch{Status: &failed, ErrorMessage: &msg, Touch: true}
		if err := s.repo.UpdateCallLog(context.WithoutCancel(ctx), call.ID, patch); err != nil {
			log.Error("failed to record call failure", "error", err)
		}
		call.Status = failed
		call.ErrorMessage = msg
		log.Warn("call failed", "error", callErr)
		return call, fmt.Errorf("failed to start call: %w", callErr)
	}

	patch := model.CallLogPatch{Touch: true}
	if res.SessionID != "" {
		patch.VoiceflowSessionID = &res.SessionID
		call.VoiceflowSessionID = res.SessionID
	}
	if res.Transcript != "" {
		patch.Transcript = &res.Transcript
		call.Transcript = res.Transcript
	}
	if err := s.repo.UpdateCallLog(ctx, call.ID, patch); err != nil {
		log.Warn("failed to record call session", "error", err)
	}

	log.Info("call started", "session_id", res.SessionID, "player", call.PlayerName)
	return call, nil
}

func (s *CallService) resolveDescriptor(ctx context.Context, in *StartCallInput) error {
	if in.JerseyID != nil && *in.JerseyID != "" && s.jerseys != nil {
		j, err := s.jerseys.GetJersey(ctx, *in.JerseyID)
		if err != nil {
			return err
		}
		if in.PlayerName == "" {
			in.PlayerName = j.PlayerName
		}
		if in.Edition == "" {
			in.Edition = string(j.Edition)
		}
		if in.Size == "" {
			in.Size = j.Size
		}
	} else {
		in.JerseyID = nil
	}

	in.PlayerName = strings.TrimSpace(in.PlayerName)
	if in.PlayerName == "" {
		return ErrMissingPlayer
	}
	if in.Edition == "" {
		in.Edition = string(model.EditionIcon)
	}
	if in.Size == "" {
		in.Size = "48"
	}
	return nil
}

// Get returns one call log.
func (s *CallService) Get(ctx context.Context, id string) (*model.CallLog, error) {
	return s.repo.GetCallLog(ctx, id)
}

// List returns the newest call logs.
func (s *CallService) List(ctx context.Context, limit int) ([]model.CallLog, error) {
	return s.repo.ListCallLogs(ctx, ClampLimit(limit, DefaultCallLimit, MaxCallLimit))
}

// Stats counts calls by status.
func (s *CallService) Stats(ctx context.Context) (*model.CallStats, error) {
	return s.repo.GetCallStats(ctx)
}

// ApplyCallback writes the fields reported by the provider.
func (s *CallService) ApplyCallback(ctx context.Context, id string, patch model.CallLogPatch) error {
	return s.repo.UpdateCallLog(ctx, id, patch)
}

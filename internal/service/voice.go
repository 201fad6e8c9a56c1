package service

import (
	"context"
	"strings"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/voice"
	"jersey-stock-api/pkg/logger"
)

// Interpreter maps a transcript to an intent.
type Interpreter interface {
	Interpret(ctx context.Context, transcript string) (model.Intent, voice.Source)
}

// VoiceOutcome reports what a voice command did.
type VoiceOutcome string

const (
	OutcomeAdjusted    VoiceOutcome = "adjusted"
	OutcomeCallStarted VoiceOutcome = "call_started"
	OutcomeNoMatch     VoiceOutcome = "no_match"
	OutcomeNoChange    VoiceOutcome = "no_change"
	OutcomeIgnored     VoiceOutcome = "ignored"
)

// VoiceResult is the response to a voice command.
type VoiceResult struct {
	Transcript string         `json:"transcript"`
	Intent     model.Intent   `json:"intent"`
	Source     voice.Source   `json:"source"`
	Outcome    VoiceOutcome   `json:"outcome"`
	Jersey     *model.Jersey  `json:"jersey,omitempty"`
	Call       *model.CallLog `json:"call,omitempty"`
}

// VoiceService interprets transcripts and applies the resulting intents.
type VoiceService struct {
	interpreter Interpreter
	inventory   *InventoryService
	calls       *CallService
	log         *logger.Logger
}

func NewVoiceService(interpreter Interpreter, inventory *InventoryService, calls *CallService, log *logger.Logger) *VoiceService {
	if log == nil {
		log = logger.Nop()
	}
	return &VoiceService{
		interpreter: interpreter,
		inventory:   inventory,
		calls:       calls,
		log:         log.With("service", "VoiceService"),
	}
}

// Interpret returns the intent without acting on it.
func (s *VoiceService) Interpret(ctx context.Context, transcript string) (*VoiceResult, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}
	intent, source := s.interpreter.Interpret(ctx, transcript)
	return &VoiceResult{Transcript: transcript, Intent: intent, Source: source, Outcome: OutcomeIgnored}, nil
}

// Execute interprets the transcript and applies it: adjust intents go through
// the inventory mutation path, order intents start a call.
func (s *VoiceService) Execute(ctx context.Context, actor *string, transcript string) (*VoiceResult, error) {
	res, err := s.Interpret(ctx, transcript)
	if err != nil {
		return nil, err
	}

	switch res.Intent.Type {
	case model.IntentAdjust:
		return s.applyAdjust(ctx, actor, res)
	case model.IntentOrder:
		return s.applyOrder(ctx, actor, res)
	default:
		return res, nil
	}
}

func (s *VoiceService) applyAdjust(ctx context.Context, actor *string, res *VoiceResult) (*VoiceResult, error) {
	match, err := s.findRow(ctx, res.Intent)
	if err != nil {
		return nil, err
	}
	if match == nil {
		res.Outcome = OutcomeNoMatch
		return res, nil
	}

	if res.Intent.QtyInventoryDelta == 0 && res.Intent.QtyDueLVADelta == 0 {
		res.Outcome = OutcomeNoChange
		res.Jersey = match
		return res, nil
	}

	updated, err := s.inventory.adjustRow(ctx, actor, *match, res.Intent.QtyInventoryDelta, res.Intent.QtyDueLVADelta)
	if err != nil {
		return nil, err
	}
	res.Outcome = OutcomeAdjusted
	res.Jersey = updated
	return res, nil
}

func (s *VoiceService) applyOrder(ctx context.Context, actor *string, res *VoiceResult) (*VoiceResult, error) {
	match, err := s.findRow(ctx, res.Intent)
	if err != nil {
		return nil, err
	}

	in := StartCallInput{
		PlayerName: res.Intent.PlayerName,
		Edition:    res.Intent.Edition,
		Size:       res.Intent.Size,
		Quantity:   res.Intent.OrderQuantity,
		Source:     "voice",
		Notes:      res.Transcript,
	}
	if res.Intent.OrderDetails != nil {
		in.Priority = res.Intent.OrderDetails.Priority
		if in.Quantity == 0 {
			in.Quantity = res.Intent.OrderDetails.Quantity
		}
	}
	if match != nil {
		id := match.ID
		in.JerseyID = &id
		in.PlayerName = match.PlayerName
		res.Jersey = match
	}

	call, err := s.calls.Start(ctx, actor, in)
	if call != nil {
		res.Call = call
	}
	if err != nil {
		return res, err
	}
	res.Outcome = OutcomeCallStarted
	return res, nil
}

// findRow returns the first row whose player matches case-insensitively, and
// whose edition and size match when the intent names them.
func (s *VoiceService) findRow(ctx context.Context, intent model.Intent) (*model.Jersey, error) {
	if intent.PlayerName == "" {
		return nil, nil
	}
	rows, err := s.inventory.List(ctx, model.JerseyFilter{Search: intent.PlayerName})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		r := rows[i]
		if !strings.EqualFold(r.PlayerName, intent.PlayerName) {
			continue
		}
		if intent.Edition != "" && !strings.EqualFold(string(r.Edition), intent.Edition) {
			continue
		}
		if intent.Size != "" && r.Size != intent.Size {
			continue
		}
		return &r, nil
	}
	return nil, nil
}

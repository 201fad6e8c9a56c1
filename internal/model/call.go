package model

import (
	"encoding/json"
	"time"
)

// CallStatus is the lifecycle state of an outbound reorder call.
type CallStatus string

const (
	CallInitiated  CallStatus = "initiated"
	CallInProgress CallStatus = "in_progress"
	CallCompleted  CallStatus = "completed"
	CallFailed     CallStatus = "failed"
	CallCancelled  CallStatus = "cancelled"
)

// IsTerminal reports whether no further transition is expected.
func (s CallStatus) IsTerminal() bool {
	return s == CallCompleted || s == CallFailed || s == CallCancelled
}

// CallLog tracks one outbound call lifecycle.
type CallLog struct {
	ID                 string          `json:"id"`
	JerseyID           *string         `json:"jersey_id"`
	PlayerName         string          `json:"player_name"`
	Edition            string          `json:"edition"`
	Size               string          `json:"size"`
	Status             CallStatus      `json:"status"`
	InitiatedBy        *string         `json:"initiated_by"`
	OrderPlaced        bool            `json:"order_placed"`
	OrderDetails       json.RawMessage `json:"order_details"`
	DurationSeconds    *int            `json:"duration_seconds"`
	Transcript         string          `json:"transcript"`
	VoiceflowSessionID string          `json:"voiceflow_session_id"`
	ErrorMessage       string          `json:"error_message"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CallLogPatch is a partial update of a call log. Nil fields are left untouched.
type CallLogPatch struct {
	Status             *CallStatus
	DurationSeconds    *int
	Transcript         *string
	OrderPlaced        *bool
	OrderDetails       json.RawMessage
	ErrorMessage       *string
	VoiceflowSessionID *string
	// Touch stamps updated_at. The callback receiver leaves it off so only the
	// reported fields change.
	Touch bool
}

// IsEmpty reports whether the patch writes no column.
func (p CallLogPatch) IsEmpty() bool {
	return p.Status == nil && p.DurationSeconds == nil && p.Transcript == nil &&
		p.OrderPlaced == nil && len(p.OrderDetails) == 0 && p.ErrorMessage == nil &&
		p.VoiceflowSessionID == nil && !p.Touch
}

// OrderDetails is the request the orchestrator hands to the call provider.
type OrderDetails struct {
	PlayerName string `json:"player_name"`
	Edition    string `json:"edition"`
	Size       string `json:"size"`
	Quantity   int    `json:"quantity"`
	Priority   string `json:"priority,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Source     string `json:"source,omitempty"`
}

// CallStats summarises call logs by status.
type CallStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	InProgress int64 `json:"in_progress"`
	Initiated  int64 `json:"initiated"`
	Cancelled  int64 `json:"cancelled"`
}

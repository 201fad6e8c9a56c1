package model

// IntentType classifies a voice command.
type IntentType string

const (
	IntentAdjust  IntentType = "adjust"
	IntentOrder   IntentType = "order"
	IntentUnknown IntentType = "unknown"
)

// Intent is the structured result of interpreting a transcript. Downstream
// matching against inventory rows keys off these exact field names.
type Intent struct {
	Type              IntentType          `json:"type"`
	PlayerName        string              `json:"player_name,omitempty"`
	Edition           string              `json:"edition,omitempty"`
	Size              string              `json:"size,omitempty"`
	QtyInventoryDelta int                 `json:"qty_inventory_delta,omitempty"`
	QtyDueLVADelta    int                 `json:"qty_due_lva_delta,omitempty"`
	OrderQuantity     int                 `json:"order_quantity,omitempty"`
	OrderDetails      *IntentOrderDetails `json:"order_details,omitempty"`
}

// IntentOrderDetails carries the extra fields of an order intent.
type IntentOrderDetails struct {
	Priority   string `json:"priority"`
	Quantity   int    `json:"quantity"`
	Transcript string `json:"transcript,omitempty"`
}

// UnknownIntent is returned when nothing in the transcript is recognised.
func UnknownIntent() Intent {
	return Intent{Type: IntentUnknown}
}

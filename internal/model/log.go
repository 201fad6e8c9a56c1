package model

import (
	"encoding/json"
	"time"
)

// Activity actions written by the application.
const (
	ActionInventoryUpdate = "inventory_update"
	ActionLowStockAlert   = "low_stock_alert"
	ActionInventoryImport = "inventory_import"
)

// ActivityLogEntry is one append-only activity record.
type ActivityLogEntry struct {
	ID        string          `json:"id"`
	Actor     *string         `json:"actor"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewActivity builds an entry with details marshalled from v.
func NewActivity(actor *string, action string, details interface{}) ActivityLogEntry {
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("null")
	}
	return ActivityLogEntry{
		Actor:   actor,
		Action:  action,
		Details: raw,
	}
}

// LowStockDetails is the payload of a low_stock_alert entry and of the
// notification webhook.
type LowStockDetails struct {
	ID           string  `json:"id"`
	PlayerName   string  `json:"player_name"`
	Edition      Edition `json:"edition"`
	Size         string  `json:"size"`
	QtyInventory int     `json:"qty_inventory"`
}

// InventoryUpdateDetails is the payload of an inventory_update entry.
type InventoryUpdateDetails struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

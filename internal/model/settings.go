package model

// SettingsID is the fixed id of the singleton settings row.
const SettingsID = 1

// DefaultLowStockThreshold applies until settings are saved for the first time.
const DefaultLowStockThreshold = 1

// Settings holds application-wide tunables.
type Settings struct {
	LowStockThreshold int `json:"low_stock_threshold"`
}

// DefaultSettings returns the settings used when no row exists.
func DefaultSettings() Settings {
	return Settings{LowStockThreshold: DefaultLowStockThreshold}
}

// UserPreferences holds one user's notification and display settings.
type UserPreferences struct {
	UserID         string  `json:"user_id"`
	LowStockEmails bool    `json:"low_stock_emails"`
	CallUpdates    bool    `json:"call_updates"`
	DefaultEdition Edition `json:"default_edition,omitempty"`
	RowsPerPage    int     `json:"rows_per_page"`
	Theme          string  `json:"theme,omitempty"`
}

package model

import (
	"strings"
	"time"
)

// Edition is a jersey edition.
type Edition string

const (
	EditionIcon        Edition = "Icon"
	EditionStatement   Edition = "Statement"
	EditionAssociation Edition = "Association"
	EditionCity        Edition = "City"
)

// Editions lists every known edition in display order.
var Editions = []Edition{EditionIcon, EditionStatement, EditionAssociation, EditionCity}

// ParseEdition matches s case-insensitively against the known editions.
func ParseEdition(s string) (Edition, bool) {
	s = strings.TrimSpace(s)
	for _, e := range Editions {
		if strings.EqualFold(s, string(e)) {
			return e, true
		}
	}
	return "", false
}

// Jersey is one inventory row: a player/edition/size variant and its counts.
type Jersey struct {
	ID           string    `json:"id"`
	PlayerName   string    `json:"player_name"`
	Edition      Edition   `json:"edition"`
	Size         string    `json:"size"`
	QtyInventory int       `json:"qty_inventory"`
	QtyDueLVA    int       `json:"qty_due_lva"`
	UpdatedAt    time.Time `json:"updated_at"`
	UpdatedBy    *string   `json:"updated_by"`
}

// NewJersey returns a row populated with the add-row defaults.
func NewJersey() Jersey {
	return Jersey{
		Edition: EditionIcon,
		Size:    "48",
	}
}

// JerseyPatch is a partial set of editable fields. Nil fields are left untouched.
type JerseyPatch struct {
	PlayerName   *string  `json:"player_name,omitempty"`
	Edition      *Edition `json:"edition,omitempty"`
	Size         *string  `json:"size,omitempty"`
	QtyInventory *int     `json:"qty_inventory,omitempty"`
	QtyDueLVA    *int     `json:"qty_due_lva,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p JerseyPatch) IsEmpty() bool {
	return p.PlayerName == nil && p.Edition == nil && p.Size == nil &&
		p.QtyInventory == nil && p.QtyDueLVA == nil
}

// Apply returns a copy of j with the patch applied.
func (p JerseyPatch) Apply(j Jersey) Jersey {
	if p.PlayerName != nil {
		j.PlayerName = *p.PlayerName
	}
	if p.Edition != nil {
		j.Edition = *p.Edition
	}
	if p.Size != nil {
		j.Size = *p.Size
	}
	if p.QtyInventory != nil {
		j.QtyInventory = *p.QtyInventory
	}
	if p.QtyDueLVA != nil {
		j.QtyDueLVA = *p.QtyDueLVA
	}
	return j
}

// Fields returns the changed fields keyed by column name, as recorded in the
// inventory_update activity entry.
func (p JerseyPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.PlayerName != nil {
		fields["player_name"] = *p.PlayerName
	}
	if p.Edition != nil {
		fields["edition"] = *p.Edition
	}
	if p.Size != nil {
		fields["size"] = *p.Size
	}
	if p.QtyInventory != nil {
		fields["qty_inventory"] = *p.QtyInventory
	}
	if p.QtyDueLVA != nil {
		fields["qty_due_lva"] = *p.QtyDueLVA
	}
	return fields
}

// JerseyFilter narrows and orders an inventory listing.
type JerseyFilter struct {
	// Search matches a case-insensitive substring of the player name or a
	// substring of the size.
	Search  string
	Edition Edition
	SortBy  string
	Desc    bool
	// MaxQtyInventory, when set, keeps rows with qty_inventory at or below it.
	MaxQtyInventory *int
}

// SortColumns are the columns a listing may be ordered by.
var SortColumns = map[string]bool{
	"player_name":   true,
	"edition":       true,
	"size":          true,
	"qty_inventory": true,
	"qty_due_lva":   true,
	"updated_at":    true,
}

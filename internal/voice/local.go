package voice

import (
	"regexp"
	"strconv"
	"strings"

	"jersey-stock-api/internal/model"
)

const (
	defaultSize     = "48"
	defaultQuantity = 1
)

var (
	orderPattern    = regexp.MustCompile(`(?:reorder|order|buy)\s+(?:(\d+)\s+)?(\w+)`)
	adjustPattern   = regexp.MustCompile(`(?:add|subtract|set)\s+(?:\d+\s+)?(\w+)`)
	sizePattern     = regexp.MustCompile(`size\s+(\d+)`)
	quantityPattern = regexp.MustCompile(`(\d+)\s*(?:jerseys?|pieces?)`)
	integerPattern  = regexp.MustCompile(`\b(\d+)\b`)
)

// rule classifies a lowercased transcript when match reports true.
type rule struct {
	name  string
	match func(t string) bool
	build func(t string) model.Intent
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		name:  "order",
		match: containsAny("order", "reorder", "buy"),
		build: buildOrder,
	},
	{
		name:  "adjust",
		match: containsAny("add", "subtract", "set"),
		build: buildAdjust,
	},
}

// InterpretLocal maps a transcript to an intent with keyword rules only.
func InterpretLocal(transcript string) model.Intent {
	t := strings.ToLower(strings.TrimSpace(transcript))
	if t == "" {
		return model.UnknownIntent()
	}
	for _, r := range rules {
		if r.match(t) {
			return r.build(t)
		}
	}
	return model.UnknownIntent()
}

func buildOrder(t string) model.Intent {
	var player string
	verbQty := 0
	if m := orderPattern.FindStringSubmatch(t); m != nil {
		player = m[2]
		if m[1] != "" {
			verbQty, _ = strconv.Atoi(m[1])
		}
	}

	qty := defaultQuantity
	if m := quantityPattern.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			qty = n
		}
	} else if verbQty > 0 {
		qty = verbQty
	}

	priority := "medium"
	if strings.Contains(t, "urgent") || strings.Contains(t, "asap") {
		priority = "high"
	}

	return model.Intent{
		Type:          model.IntentOrder,
		PlayerName:    player,
		Edition:       string(findEdition(t)),
		Size:          findSize(t),
		OrderQuantity: qty,
		OrderDetails: &model.IntentOrderDetails{
			Priority: priority,
			Quantity: qty,
		},
	}
}

func buildAdjust(t string) model.Intent {
	var player string
	if m := adjustPattern.FindStringSubmatch(t); m != nil {
		player = m[1]
	}

	magnitude := defaultQuantity
	if m := integerPattern.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			magnitude = n
		}
	}

	delta := 0
	switch {
	case strings.Contains(t, "add") || strings.Contains(t, "plus"):
		delta = magnitude
	case strings.Contains(t, "subtract") || strings.Contains(t, "minus"):
		delta = -magnitude
	}

	return model.Intent{
		Type:              model.IntentAdjust,
		PlayerName:        player,
		Edition:           string(findEdition(t)),
		Size:              findSize(t),
		QtyInventoryDelta: delta,
	}
}

func findEdition(t string) model.Edition {
	for _, e := range model.Editions {
		if strings.Contains(t, strings.ToLower(string(e))) {
			return e
		}
	}
	return model.EditionIcon
}

func findSize(t string) string {
	if m := sizePattern.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	return defaultSize
}

func containsAny(words ...string) func(string) bool {
	return func(t string) bool {
		for _, w := range words {
			if strings.Contains(t, w) {
				return true
			}
		}
		return false
	}
}

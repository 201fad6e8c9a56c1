// Package draft builds reorder email drafts and optionally polishes them with
// a completion model.
package draft

import (
	"context"
	"fmt"

	"jersey-stock-api/internal/clients/openai"
	"jersey-stock-api/pkg/logger"
)

const systemPrompt = "You write concise, professional reorder emails for sports equipment."

// Request identifies the item being reordered.
type Request struct {
	PlayerName string `json:"player_name"`
	Edition    string `json:"edition"`
	Size       string `json:"size"`
	QtyNeeded  int    `json:"qty_needed"`
}

// BuildTemplate renders the plain reorder email. Equal input gives equal output.
func BuildTemplate(r Request) string {
	return fmt.Sprintf(`Subject: Jersey Reorder Request - %[1]s %[2]s %[3]s

Hi Team,

We are at or below threshold for the following item and request reorder:

- Player: %[1]s
- Edition: %[2]s
- Size: %[3]s
- Quantity requested: %[4]d

Please advise on lead time and confirm order.

Thanks,
Equipment Team`, r.PlayerName, r.Edition, r.Size, r.QtyNeeded)
}

// QtyNeeded is how many units to request to get back above threshold, never
// less than one.
func QtyNeeded(threshold, qtyInventory int) int {
	if n := threshold - qtyInventory; n > 1 {
		return n
	}
	return 1
}

// Result is a draft and where it came from.
type Result struct {
	Text      string `json:"text"`
	Rewritten bool   `json:"rewritten"`
	Error     string `json:"error,omitempty"`
}

// Completer is the completion backend used for rewriting.
type Completer interface {
	Complete(ctx context.Context, in openai.ChatRequest) (string, error)
}

// Rewriter polishes templates. A nil completer returns them unchanged.
type Rewriter struct {
	log         *logger.Logger
	completer   Completer
	model       string
	temperature float64
}

func NewRewriter(log *logger.Logger, completer Completer, model string, temperature float64) *Rewriter {
	if log == nil {
		log = logger.Nop()
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Rewriter{
		log:         log.With("component", "DraftRewriter"),
		completer:   completer,
		model:       model,
		temperature: temperature,
	}
}

// Configured reports whether rewrites reach a model.
func (r *Rewriter) Configured() bool {
	return r != nil && r.completer != nil
}

// Rewrite makes one completion request. Any failure yields the template.
func (r *Rewriter) Rewrite(ctx context.Context, template string) Result {
	if !r.Configured() {
		return Result{Text: template}
	}

	text, err := r.completer.Complete(ctx, openai.ChatRequest{
		Model: r.model,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: template},
		},
		Temperature: r.temperature,
	})
	if err != nil {
		r.log.Warn("draft rewrite failed, using template", "error", err)
		return Result{Text: template, Error: err.Error()}
	}
	return Result{Text: text, Rewritten: true}
}

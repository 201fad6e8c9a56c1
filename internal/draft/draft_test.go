package draft

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jersey-stock-api/internal/clients/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	text string
	err  error
	got  []openai.ChatRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, in openai.ChatRequest) (string, error) {
	f.got = append(f.got, in)
	return f.text, f.err
}

func TestBuildTemplate_Deterministic(t *testing.T) {
	req := Request{PlayerName: "Jalen Brown", Edition: "Icon", Size: "48", QtyNeeded: 2}

	first := BuildTemplate(req)
	second := BuildTemplate(req)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "Subject: Jersey Reorder Request - Jalen Brown Icon 48\n"))
	assert.Contains(t, first, "- Quantity requested: 2")
	assert.True(t, strings.HasSuffix(first, "Thanks,\nEquipment Team"))
}

func TestQtyNeeded(t *testing.T) {
	assert.Equal(t, 1, QtyNeeded(1, 1))
	assert.Equal(t, 1, QtyNeeded(1, 7))
	assert.Equal(t, 4, QtyNeeded(5, 1))
	assert.Equal(t, 1, QtyNeeded(0, 0))
}

func TestRewrite_UnconfiguredReturnsTemplate(t *testing.T) {
	tmpl := BuildTemplate(Request{PlayerName: "Tatum", Edition: "City", Size: "52", QtyNeeded: 1})

	var nilRewriter *Rewriter
	assert.Equal(t, Result{Text: tmpl}, nilRewriter.Rewrite(context.Background(), tmpl))

	r := NewRewriter(nil, nil, "", 0.2)
	assert.False(t, r.Configured())
	assert.Equal(t, Result{Text: tmpl}, r.Rewrite(context.Background(), tmpl))
}

func TestRewrite_UsesCompleter(t *testing.T) {
	fc := &fakeCompleter{text: "Polished email"}
	r := NewRewriter(nil, fc, "", 0.2)

	res := r.Rewrite(context.Background(), "template")

	assert.Equal(t, Result{Text: "Polished email", Rewritten: true}, res)
	require.Len(t, fc.got, 1)
	assert.Equal(t, "gpt-4o-mini", fc.got[0].Model)
	assert.Equal(t, 0.2, fc.got[0].Temperature)
	require.Len(t, fc.got[0].Messages, 2)
	assert.Equal(t, systemPrompt, fc.got[0].Messages[0].Content)
	assert.Equal(t, "template", fc.got[0].Messages[1].Content)
}

func TestRewrite_FailureKeepsTemplate(t *testing.T) {
	r := NewRewriter(nil, &fakeCompleter{err: errors.New("quota exceeded")}, "gpt-4o-mini", 0.2)

	res := r.Rewrite(context.Background(), "template")

	assert.Equal(t, "template", res.Text)
	assert.False(t, res.Rewritten)
	assert.Equal(t, "quota exceeded", res.Error)
}

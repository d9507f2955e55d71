package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSDKMessages(t *testing.T) {
	t.Parallel()

	out := toSDKMessages([]Message{
		{Role: "user", Content: "summarize this page"},
		{Role: "assistant", Content: "{"},
		{Role: "", Content: "unknown roles default to user"},
	})

	require.Len(t, out, 3)
	assert.Equal(t, sdk.MessageParamRoleUser, out[0].Role)
	assert.Equal(t, "summarize this page", out[0].Content[0].OfText.Text)
	assert.Equal(t, sdk.MessageParamRoleAssistant, out[1].Role)
	assert.Equal(t, "{", out[1].Content[0].OfText.Text)
	assert.Equal(t, sdk.MessageParamRoleUser, out[2].Role)
}

func TestFromSDKMessage(t *testing.T) {
	t.Parallel()

	msg := &sdk.Message{
		ID:         "msg-1",
		Model:      "claude-sonnet-4-5-20250929",
		StopReason: "end_turn",
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "first "},
			{Type: "tool_use"},
			{Type: "text", Text: "second"},
		},
		Usage: sdk.Usage{InputTokens: 120, OutputTokens: 45},
	}

	got := fromSDKMessage(msg)

	assert.Equal(t, "msg-1", got.ID)
	assert.Equal(t, "claude-sonnet-4-5-20250929", got.Model)
	assert.Equal(t, "first second", got.Text, "non-text blocks are skipped")
	assert.Equal(t, "end_turn", got.StopReason)
	assert.EqualValues(t, 120, got.Usage.InputTokens)
	assert.EqualValues(t, 45, got.Usage.OutputTokens)
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	assert.InDelta(t, 3.00+7.50, usage.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)
	assert.InDelta(t, 0.80+2.00, usage.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, usage.EstimateCost("some-unknown-model"))
	assert.Zero(t, TokenUsage{}.EstimateCost("claude-sonnet-4-5-20250929"))
}

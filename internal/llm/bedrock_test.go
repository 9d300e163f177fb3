package llm

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverseAPI struct {
	lastInput *bedrockruntime.ConverseInput
	output    *bedrockruntime.ConverseOutput
	err       error
}

func (f *fakeConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.lastInput = params
	return f.output, f.err
}

func converseTextOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
	}
}

func TestBedrockClient_Complete(t *testing.T) {
	api := &fakeConverseAPI{output: converseTextOutput("  hello there  ")}
	c := NewBedrockClient(api)

	resp, err := c.Complete(context.Background(), Request{
		Model:  "anthropic.claude-3-haiku",
		System: []string{"be brief"},
		Messages: []Message{
			{Role: RoleUser, Content: "hi"},
		},
		MaxTokens:   100,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Text)
	assert.Equal(t, string(brtypes.StopReasonEndTurn), resp.StopReason)

	require.NotNil(t, api.lastInput)
	assert.Equal(t, "anthropic.claude-3-haiku", *api.lastInput.ModelId)
	assert.Len(t, api.lastInput.System, 1)
	assert.Len(t, api.lastInput.Messages, 1)
}

func TestBedrockClient_RequiresModel(t *testing.T) {
	c := NewBedrockClient(&fakeConverseAPI{})
	_, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}

func TestBedrockClient_SystemRoleMessagesBecomeSystemBlocks(t *testing.T) {
	api := &fakeConverseAPI{output: converseTextOutput("ok")}
	c := NewBedrockClient(api)

	_, err := c.Complete(context.Background(), Request{
		Model: "m",
		Messages: []Message{
			{Role: RoleSystem, Content: "rules"},
			{Role: RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, api.lastInput.System, 1)
	assert.Len(t, api.lastInput.Messages, 1)
}

func TestBedrockClient_EmptyOutputIsError(t *testing.T) {
	api := &fakeConverseAPI{output: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: "   "},
				},
			},
		},
	}}
	c := NewBedrockClient(api)

	_, err := c.Complete(context.Background(), Request{
		Model:    "m",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}

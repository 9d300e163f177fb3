package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecheck/surveypilot/internal/llm"
)

type scriptedLLM struct {
	text     string
	err      error
	lastReq  llm.Request
	numCalls int
}

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	s.lastReq = req
	s.numCalls++
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Text: s.text}, nil
}

var capQuestion = Question{ID: 1, Text: "What is your name?", Guidelines: "Full name, e.g. John Doe"}

func TestClassifyParsesModelJSON(t *testing.T) {
	client := &scriptedLLM{text: `{"classification": "answered (high quality)", "reason": "complete answer"}`}
	caps := NewLLMCapabilities(client, "model-x")

	reply, err := caps.Classify(context.Background(), capQuestion, []TurnMessage{
		{Role: RoleAssistant, Content: "What is your name?"},
		{Role: RoleUser, Content: "John Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, ClassificationHighQuality, reply.Label)
	assert.Equal(t, "complete answer", reply.Reason)
	assert.Equal(t, "model-x", client.lastReq.Model)
}

func TestClassifyToleratesProseAroundJSON(t *testing.T) {
	client := &scriptedLLM{text: "Sure, here is the result:\n{\"classification\": \"skipped\", \"reason\": \"declined\"}\nLet me know if you need more."}
	caps := NewLLMCapabilities(client, "model-x")

	reply, err := caps.Classify(context.Background(), capQuestion, nil)
	require.NoError(t, err)
	assert.Equal(t, ClassificationSkipped, reply.Label)
}

func TestClassifyMalformedOutputIsRetryable(t *testing.T) {
	client := &scriptedLLM{text: "I could not decide."}
	caps := NewLLMCapabilities(client, "model-x")

	_, err := caps.Classify(context.Background(), capQuestion, nil)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestClassifyUnknownLabelIsValidationError(t *testing.T) {
	client := &scriptedLLM{text: `{"classification": "brilliant", "reason": "n/a"}`}
	caps := NewLLMCapabilities(client, "model-x")

	_, err := caps.Classify(context.Background(), capQuestion, nil)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.False(t, IsRetryable(err))
}

func TestClassifyWrapsClientError(t *testing.T) {
	client := &scriptedLLM{err: errors.New("throttled")}
	caps := NewLLMCapabilities(client, "model-x")

	_, err := caps.Classify(context.Background(), capQuestion, nil)
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "classify", capErr.Capability)
}

func TestGenerateQuestionReturnsTrimmedText(t *testing.T) {
	client := &scriptedLLM{text: "  So, what should I call you?  "}
	caps := NewLLMCapabilities(client, "model-x")

	prompt, err := caps.GenerateQuestion(context.Background(), capQuestion, "I live in Boston")
	require.NoError(t, err)
	assert.Equal(t, "So, what should I call you?", prompt)
	assert.Contains(t, client.lastReq.Messages[0].Content, "I live in Boston")
}

func TestGenerateQuestionEmptyOutputFails(t *testing.T) {
	client := &scriptedLLM{text: "   "}
	caps := NewLLMCapabilities(client, "model-x")

	_, err := caps.GenerateQuestion(context.Background(), capQuestion, "")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestGenerateProbeIncludesConversation(t *testing.T) {
	client := &scriptedLLM{text: "Could you share your full name?"}
	caps := NewLLMCapabilities(client, "model-x")

	probe, err := caps.GenerateProbe(context.Background(), capQuestion, []TurnMessage{
		{Role: RoleAssistant, Content: "What is your name?"},
		{Role: RoleUser, Content: "J"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Could you share your full name?", probe)
	assert.Contains(t, client.lastReq.Messages[0].Content, "User: J")
}

func TestRecordAnswerParsesModelJSON(t *testing.T) {
	client := &scriptedLLM{text: `{"answer": "John Doe", "score": 5}`}
	caps := NewLLMCapabilities(client, "model-x")

	recorded, err := caps.RecordAnswer(context.Background(), capQuestion, []TurnMessage{
		{Role: RoleUser, Content: "John Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", recorded.Text)
	assert.Equal(t, 5, recorded.Score)
}

func TestRecordAnswerScoreOutOfRange(t *testing.T) {
	client := &scriptedLLM{text: `{"answer": "John Doe", "score": 7}`}
	caps := NewLLMCapabilities(client, "model-x")

	_, err := caps.RecordAnswer(context.Background(), capQuestion, nil)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "score", valErr.Field)
}

func TestRecordAnswerMalformedOutputIsRetryable(t *testing.T) {
	client := &scriptedLLM{text: "score: five"}
	caps := NewLLMCapabilities(client, "model-x")

	_, err := caps.RecordAnswer(context.Background(), capQuestion, nil)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestRenderTurns(t *testing.T) {
	assert.Equal(t, "(empty)", renderTurns(nil))

	out := renderTurns([]TurnMessage{
		{Role: RoleAssistant, Content: "What is your name?"},
		{Role: RoleUser, Content: "John"},
	})
	assert.Equal(t, "Assistant: What is your name?\nUser: John", out)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(extractJSON("```json\n{\"a\":1}\n```")))
	assert.Equal(t, `{"a":1}`, string(extractJSON(`{"a":1}`)))
	assert.Equal(t, "no braces here", string(extractJSON("no braces here")))
}

package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wavecheck/surveypilot/internal/llm"
)

// LLMCapabilities implements all four survey capabilities on top of a single
// completion client. Structured results are requested as JSON and extracted
// from the first {...} block in the model output.
type LLMCapabilities struct {
	client    llm.Client
	model     string
	maxTokens int32
}

func NewLLMCapabilities(client llm.Client, model string) *LLMCapabilities {
	if client == nil {
		panic("survey: llm client cannot be nil")
	}
	return &LLMCapabilities{
		client:    client,
		model:     model,
		maxTokens: 512,
	}
}

func (c *LLMCapabilities) Classify(ctx context.Context, q Question, turns []TurnMessage) (ClassifiedReply, error) {
	prompt := fmt.Sprintf(classifierPrompt, q.Text, q.Guidelines, renderTurns(turns))
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return ClassifiedReply{}, capabilityErr("classify", err)
	}

	var raw struct {
		Classification string `json:"classification"`
		Reason         string `json:"reason"`
	}
	if err := json.Unmarshal(extractJSON(text), &raw); err != nil {
		return ClassifiedReply{}, capabilityErr("classify", fmt.Errorf("malformed classifier output %q: %w", text, err))
	}

	label, ok := ParseClassification(raw.Classification)
	if !ok {
		return ClassifiedReply{}, &ValidationError{
			Field: "classification",
			Msg:   fmt.Sprintf("unknown label %q", raw.Classification),
		}
	}
	return ClassifiedReply{Label: label, Reason: raw.Reason}, nil
}

func (c *LLMCapabilities) GenerateQuestion(ctx context.Context, q Question, lastResponse string) (string, error) {
	if lastResponse == "" {
		lastResponse = "(none)"
	}
	prompt := fmt.Sprintf(questionGeneratorPrompt, q.Text, q.Guidelines, lastResponse)
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return "", capabilityErr("generate_question", err)
	}
	return text, nil
}

func (c *LLMCapabilities) GenerateProbe(ctx context.Context, q Question, turns []TurnMessage) (string, error) {
	prompt := fmt.Sprintf(probeGeneratorPrompt, q.Text, q.Guidelines, renderTurns(turns))
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return "", capabilityErr("generate_probe", err)
	}
	return text, nil
}

func (c *LLMCapabilities) RecordAnswer(ctx context.Context, q Question, turns []TurnMessage) (RecordedAnswer, error) {
	prompt := fmt.Sprintf(answerRecorderPrompt, q.Text, q.Guidelines, renderTurns(turns))
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return RecordedAnswer{}, capabilityErr("record_answer", err)
	}

	var recorded RecordedAnswer
	if err := json.Unmarshal(extractJSON(text), &recorded); err != nil {
		return RecordedAnswer{}, capabilityErr("record_answer", fmt.Errorf("malformed recorder output %q: %w", text, err))
	}
	if recorded.Score < 1 || recorded.Score > 5 {
		return RecordedAnswer{}, &ValidationError{
			Field: "score",
			Msg:   fmt.Sprintf("%d is outside [1,5]", recorded.Score),
		}
	}
	return recorded, nil
}

func (c *LLMCapabilities) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Complete(ctx, llm.Request{
		Model:     c.model,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("model returned empty output")
	}
	return text, nil
}

// extractJSON pulls the first {...} block out of model output, tolerating
// extra prose around it.
func extractJSON(content string) []byte {
	content = strings.TrimSpace(content)
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}
	return []byte(content)
}

func renderTurns(turns []TurnMessage) string {
	if len(turns) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		switch t.Role {
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(t.Content)
	}
	return b.String()
}

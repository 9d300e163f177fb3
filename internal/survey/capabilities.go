package survey

import "context"

// The four external capabilities consumed by the engine. All of them may be
// network-bound; the engine bounds each call with a timeout and treats any
// failure as a retryable CapabilityError with no state mutation.

// Classifier decides what kind of reply the respondent just gave.
type Classifier interface {
	Classify(ctx context.Context, q Question, turns []TurnMessage) (ClassifiedReply, error)
}

// QuestionGenerator produces the natural-language prompt for a question,
// optionally acknowledging the respondent's previous answer.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, q Question, lastResponse string) (string, error)
}

// ProbeGenerator produces a follow-up prompt for a low-quality or off-topic
// reply, without advancing to the next question.
type ProbeGenerator interface {
	GenerateProbe(ctx context.Context, q Question, turns []TurnMessage) (string, error)
}

// RecordedAnswer is the extracted answer text plus its 1-5 quality score.
type RecordedAnswer struct {
	Text  string `json:"answer"`
	Score int    `json:"score"`
}

// AnswerRecorder deduces the final answer from the conversation and grades it.
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context, q Question, turns []TurnMessage) (RecordedAnswer, error)
}

// Capabilities bundles the four collaborators the engine needs.
type Capabilities struct {
	Classifier Classifier
	Questions  QuestionGenerator
	Probes     ProbeGenerator
	Recorder   AnswerRecorder
}

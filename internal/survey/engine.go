package survey

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wavecheck/surveypilot/internal/observability/metrics"
	"github.com/wavecheck/surveypilot/pkg/logging"
)

// CompletionMessage is returned for every turn once the survey is finished.
const CompletionMessage = "Survey is finished. Thank you for your time!"

const defaultCapabilityTimeout = 30 * time.Second

// LinkStore is the durable question/link/answer store consumed by the engine.
type LinkStore interface {
	GetLink(ctx context.Context, token string) (Link, error)
	ListQuestions(ctx context.Context) ([]Question, error)
	CreateAnswer(ctx context.Context, a Answer) (Answer, error)
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Store        LinkStore
	Sessions     SessionStore
	Capabilities Capabilities
	Logger       *logging.Logger
	Metrics      *metrics.SurveyMetrics

	// CapabilityTimeout bounds every external capability call.
	CapabilityTimeout time.Duration

	// MaxSkipsPerQuestion caps how often one question may be deferred.
	// Zero means unlimited; once the cap is reached the question leaves the
	// rotation and stays unanswered.
	MaxSkipsPerQuestion int
}

// Engine drives one survey session per link through its turns. Turns for the
// same token are serialized by a per-token mutex; turns for different tokens
// proceed independently. A turn mutates a clone of the stored session and
// persists it only after every external call succeeded, so failed turns leave
// the snapshot untouched and are safe to retry.
type Engine struct {
	store      LinkStore
	sessions   SessionStore
	caps       Capabilities
	logger     *logging.Logger
	metrics    *metrics.SurveyMetrics
	capTimeout time.Duration
	maxSkips   int

	locks sync.Map // token -> *sync.Mutex
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Store == nil {
		panic("survey: engine requires a link store")
	}
	if cfg.Sessions == nil {
		panic("survey: engine requires a session store")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CapabilityTimeout <= 0 {
		cfg.CapabilityTimeout = defaultCapabilityTimeout
	}
	return &Engine{
		store:      cfg.Store,
		sessions:   cfg.Sessions,
		caps:       cfg.Capabilities,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		capTimeout: cfg.CapabilityTimeout,
		maxSkips:   cfg.MaxSkipsPerQuestion,
	}
}

// TurnResult is what a turn hands back to the API layer.
type TurnResult struct {
	Messages  []string
	Completed bool
}

// Begin creates the session for a link and returns the first prompt.
// Calling it twice for the same token is a usage error.
func (e *Engine) Begin(ctx context.Context, token string) (*TurnResult, error) {
	mu := e.lockFor(token)
	mu.Lock()
	defer mu.Unlock()

	link, err := e.store.GetLink(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := e.sessions.Get(ctx, token); err == nil {
		return nil, ErrAlreadyStarted
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, persistenceErr("load session", err)
	}

	questions, err := e.store.ListQuestions(ctx)
	if err != nil {
		return nil, persistenceErr("list questions", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	session := NewSession(link, questions)
	if err := e.startTurn(ctx, session, ""); err != nil {
		e.metrics.ObserveTurn("begin", "failed")
		return nil, err
	}

	if err := e.sessions.Put(ctx, token, session); err != nil {
		return nil, persistenceErr("save session", err)
	}

	e.metrics.ObserveTurn("begin", "prompted")
	e.logger.Info("survey started", "token", token, "questions", len(questions))
	return &TurnResult{Messages: session.Outbox, Completed: session.Completed()}, nil
}

// Advance processes one respondent message. Before Begin it is a usage error;
// after completion it idempotently returns the fixed completion message.
func (e *Engine) Advance(ctx context.Context, token, text string) (*TurnResult, error) {
	mu := e.lockFor(token)
	mu.Lock()
	defer mu.Unlock()

	if _, err := e.store.GetLink(ctx, token); err != nil {
		return nil, err
	}

	stored, err := e.sessions.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrNotStarted
	}
	if err != nil {
		return nil, persistenceErr("load session", err)
	}

	// Terminal state: same message every time, no writes.
	if stored.Completed() {
		e.metrics.ObserveTurn("advance", "terminal")
		return &TurnResult{Messages: []string{CompletionMessage}, Completed: true}, nil
	}

	s := stored.Clone()
	s.appendTurn(RoleUser, text)
	question := *s.Current

	reply, err := e.classify(ctx, question, s.TurnBuffer)
	if err != nil {
		e.metrics.ObserveTurn("advance", "failed")
		return nil, err
	}

	var outcome string
	switch reply.Label {
	case ClassificationSkipped:
		requeue := e.maxSkips <= 0 || s.skipCount(question.ID)+1 < e.maxSkips
		s.deferCurrent(requeue)
		if err := e.startTurn(ctx, s, text); err != nil {
			e.metrics.ObserveTurn("advance", "failed")
			return nil, err
		}
		outcome = "skipped"

	case ClassificationHighQuality:
		recorded, err := e.recordAnswer(ctx, question, s.TurnBuffer)
		if err != nil {
			e.metrics.ObserveTurn("advance", "failed")
			return nil, err
		}
		// The answer write and the queue advance form one logical unit: if
		// the write fails the session is not persisted and the turn can be
		// retried against the pre-turn snapshot.
		answer, err := e.store.CreateAnswer(ctx, Answer{
			QuestionID: question.ID,
			LinkID:     s.LinkID,
			Text:       recorded.Text,
			Score:      recorded.Score,
		})
		if err != nil {
			e.metrics.ObserveTurn("advance", "failed")
			return nil, persistenceErr("record answer", err)
		}
		e.metrics.ObserveAnswerRecorded()
		s.Answers[question.ID] = answer
		s.advance()
		if err := e.startTurn(ctx, s, recorded.Text); err != nil {
			e.metrics.ObserveTurn("advance", "failed")
			return nil, err
		}
		outcome = "recorded"

	case ClassificationLowQuality, ClassificationOther:
		probe, err := e.generateProbe(ctx, question, s.TurnBuffer)
		if err != nil {
			e.metrics.ObserveTurn("advance", "failed")
			return nil, err
		}
		s.appendTurn(RoleAssistant, probe)
		s.Outbox = []string{probe}
		outcome = "probed"

	default:
		return nil, &ValidationError{Field: "classification", Msg: string(reply.Label)}
	}

	s.UpdatedAt = time.Now().UTC()
	if err := e.sessions.Put(ctx, token, s); err != nil {
		e.metrics.ObserveTurn("advance", "failed")
		return nil, persistenceErr("save session", err)
	}

	if s.Completed() {
		outcome = "completed"
	}
	e.metrics.ObserveTurn("advance", outcome)
	e.logger.Info("survey turn processed",
		"token", token,
		"classification", string(reply.Label),
		"outcome", outcome,
	)
	return &TurnResult{Messages: s.Outbox, Completed: s.Completed()}, nil
}

// startTurn generates the prompt for the session's current question, or the
// completion message when the queue has drained.
func (e *Engine) startTurn(ctx context.Context, s *Session, lastResponse string) error {
	if s.Current == nil {
		s.Outbox = []string{CompletionMessage}
		return nil
	}

	prompt, err := e.generateQuestion(ctx, *s.Current, lastResponse)
	if err != nil {
		return err
	}
	s.appendTurn(RoleAssistant, prompt)
	s.Outbox = []string{prompt}
	return nil
}

func (e *Engine) classify(ctx context.Context, q Question, turns []TurnMessage) (ClassifiedReply, error) {
	cctx, cancel := context.WithTimeout(ctx, e.capTimeout)
	defer cancel()

	start := time.Now()
	reply, err := e.caps.Classifier.Classify(cctx, q, turns)
	e.metrics.ObserveCapability("classify", time.Since(start).Seconds())
	if err != nil {
		e.metrics.ObserveCapabilityFailure("classify")
		return ClassifiedReply{}, asCapabilityErr("classify", err)
	}
	return reply, nil
}

func (e *Engine) generateQuestion(ctx context.Context, q Question, lastResponse string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.capTimeout)
	defer cancel()

	start := time.Now()
	prompt, err := e.caps.Questions.GenerateQuestion(cctx, q, lastResponse)
	e.metrics.ObserveCapability("generate_question", time.Since(start).Seconds())
	if err != nil {
		e.metrics.ObserveCapabilityFailure("generate_question")
		return "", asCapabilityErr("generate_question", err)
	}
	return prompt, nil
}

func (e *Engine) generateProbe(ctx context.Context, q Question, turns []TurnMessage) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.capTimeout)
	defer cancel()

	start := time.Now()
	probe, err := e.caps.Probes.GenerateProbe(cctx, q, turns)
	e.metrics.ObserveCapability("generate_probe", time.Since(start).Seconds())
	if err != nil {
		e.metrics.ObserveCapabilityFailure("generate_probe")
		return "", asCapabilityErr("generate_probe", err)
	}
	return probe, nil
}

func (e *Engine) recordAnswer(ctx context.Context, q Question, turns []TurnMessage) (RecordedAnswer, error) {
	cctx, cancel := context.WithTimeout(ctx, e.capTimeout)
	defer cancel()

	start := time.Now()
	recorded, err := e.caps.Recorder.RecordAnswer(cctx, q, turns)
	e.metrics.ObserveCapability("record_answer", time.Since(start).Seconds())
	if err != nil {
		e.metrics.ObserveCapabilityFailure("record_answer")
		return RecordedAnswer{}, asCapabilityErr("record_answer", err)
	}
	return recorded, nil
}

func (e *Engine) lockFor(token string) *sync.Mutex {
	lockAny, _ := e.locks.LoadOrStore(token, &sync.Mutex{})
	return lockAny.(*sync.Mutex)
}

// asCapabilityErr preserves typed capability/validation errors and wraps
// anything else (timeouts, transport failures) as retryable.
func asCapabilityErr(capability string, err error) error {
	var capErr *CapabilityError
	if errors.As(err, &capErr) {
		return err
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return err
	}
	return capabilityErr(capability, err)
}

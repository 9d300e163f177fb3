package survey

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkNotFound means the link token does not exist in the store.
	ErrLinkNotFound = errors.New("survey: link not found")

	// ErrNoQuestions means a survey was started with no questions configured.
	ErrNoQuestions = errors.New("survey: no questions configured")

	// ErrSessionNotFound means no session snapshot exists for the token.
	ErrSessionNotFound = errors.New("survey: session not found")

	// ErrAlreadyStarted means Begin was called twice for the same token.
	ErrAlreadyStarted = errors.New("survey: survey already started for link")

	// ErrNotStarted means Advance was called before Begin.
	ErrNotStarted = errors.New("survey: survey not started for link")
)

// CapabilityError wraps a failed or malformed external capability call.
// Nothing was committed, so the same turn can be retried safely.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("survey: capability %s failed: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

func capabilityErr(capability string, err error) error {
	return &CapabilityError{Capability: capability, Err: err}
}

// ValidationError means a capability returned a value outside its domain,
// e.g. a score outside [1,5] or an unknown classification label.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("survey: invalid %s: %s", e.Field, e.Msg)
}

// PersistenceError wraps a failed durable write to the answer or session store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("survey: persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsRetryable reports whether the caller may safely resend the same turn.
func IsRetryable(err error) bool {
	var capErr *CapabilityError
	return errors.As(err, &capErr)
}

// IsUsage reports whether the error is a turn-protocol misuse by the caller.
func IsUsage(err error) bool {
	return errors.Is(err, ErrAlreadyStarted) || errors.Is(err, ErrNotStarted)
}

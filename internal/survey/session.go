package survey

import "time"

// Session is the per-link mutable progress record for one survey run.
//
// At any instant every question id lives in exactly one of Current, Pending,
// or Answers; a skipped question passes through Skipped on its way back to the
// Pending tail. Current == nil means the survey is complete and the session is
// terminal.
type Session struct {
	LinkID int64  `json:"link_id"`
	Token  string `json:"token"`

	Current *Question  `json:"current,omitempty"`
	Pending []Question `json:"pending"`

	// Skipped records every deferral, in order. A question appears once per
	// skip, so its skip count is the number of occurrences.
	Skipped []Question `json:"skipped,omitempty"`

	// Answers maps question id to its finalized answer.
	Answers map[int64]Answer `json:"answers"`

	// TurnBuffer holds the conversation since the last question transition.
	TurnBuffer []TurnMessage `json:"turn_buffer,omitempty"`

	// Outbox is the outward-facing message produced by the latest turn.
	Outbox []string `json:"outbox,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession seeds a session from the ordered question list: the head becomes
// the current question, the rest form the pending queue.
func NewSession(link Link, questions []Question) *Session {
	now := time.Now().UTC()
	s := &Session{
		LinkID:    link.ID,
		Token:     link.Token,
		Answers:   make(map[int64]Answer),
		StartedAt: now,
		UpdatedAt: now,
	}
	if len(questions) > 0 {
		head := questions[0]
		s.Current = &head
		s.Pending = append(s.Pending, questions[1:]...)
	}
	return s
}

// Completed reports whether the survey is in its terminal state.
func (s *Session) Completed() bool {
	return s.Current == nil
}

// Clone returns a deep copy. Turn processing mutates a clone so a failed
// transition never leaks partial state into the stored snapshot.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := &Session{
		LinkID:    s.LinkID,
		Token:     s.Token,
		StartedAt: s.StartedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Current != nil {
		cur := *s.Current
		c.Current = &cur
	}
	c.Pending = append([]Question(nil), s.Pending...)
	c.Skipped = append([]Question(nil), s.Skipped...)
	c.TurnBuffer = append([]TurnMessage(nil), s.TurnBuffer...)
	c.Outbox = append([]string(nil), s.Outbox...)
	c.Answers = make(map[int64]Answer, len(s.Answers))
	for id, a := range s.Answers {
		c.Answers[id] = a
	}
	return c
}

// skipCount returns how many times the given question has been deferred.
func (s *Session) skipCount(questionID int64) int {
	n := 0
	for _, q := range s.Skipped {
		if q.ID == questionID {
			n++
		}
	}
	return n
}

// advance pops the next pending question into Current, or marks the session
// terminal when the queue is empty. The turn buffer is reset either way.
func (s *Session) advance() {
	s.TurnBuffer = nil
	if len(s.Pending) == 0 {
		s.Current = nil
		return
	}
	head := s.Pending[0]
	s.Pending = append([]Question(nil), s.Pending[1:]...)
	s.Current = &head
}

// deferCurrent moves the current question to the skipped list and, unless the
// skip cap says otherwise, back onto the pending tail. It then advances.
func (s *Session) deferCurrent(requeue bool) {
	if s.Current == nil {
		return
	}
	q := *s.Current
	s.Skipped = append(s.Skipped, q)
	if requeue {
		s.Pending = append(s.Pending, q)
	}
	s.advance()
}

// appendTurn adds one message to the per-question buffer.
func (s *Session) appendTurn(role, content string) {
	s.TurnBuffer = append(s.TurnBuffer, TurnMessage{Role: role, Content: content})
}

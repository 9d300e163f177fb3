package survey

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Question is an immutable survey question with optional answer guidelines.
type Question struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	Guidelines string `json:"guidelines,omitempty"`
}

// Link is the external handle for one respondent's survey session.
type Link struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

// Answer is the finalized, graded answer to one question for one link.
// Created exactly once per (link, question) pair; append-only.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID int64     `json:"question_id"`
	LinkID     int64     `json:"link_id"`
	Text       string    `json:"text"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// TurnMessage is one conversation message inside the per-question buffer.
type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

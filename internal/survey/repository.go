package survey

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists questions, links, and answers to PostgreSQL.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("survey: db cannot be nil")
	}
	return &Repository{db: db}
}

// CreateQuestion inserts a new question and returns it with its id.
func (r *Repository) CreateQuestion(ctx context.Context, text, guidelines string) (Question, error) {
	var q Question
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO questions (text, guidelines)
		VALUES ($1, $2)
		RETURNING id, text, COALESCE(guidelines, '')`,
		text, nullIfEmpty(guidelines),
	).Scan(&q.ID, &q.Text, &q.Guidelines)
	if err != nil {
		return Question{}, fmt.Errorf("survey: failed to create question: %w", err)
	}
	return q, nil
}

// ListQuestions returns every question in insertion order.
func (r *Repository) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, COALESCE(guidelines, '')
		FROM questions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("survey: failed to list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Guidelines); err != nil {
			return nil, fmt.Errorf("survey: failed to scan question: %w", err)
		}
		out = append(out, q)
	}
	if out == nil {
		out = []Question{}
	}
	return out, rows.Err()
}

// CreateLink mints a new survey link with a random token.
func (r *Repository) CreateLink(ctx context.Context) (Link, error) {
	token := uuid.NewString()
	var l Link
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO links (token) VALUES ($1)
		RETURNING id, token`,
		token,
	).Scan(&l.ID, &l.Token)
	if err != nil {
		return Link{}, fmt.Errorf("survey: failed to create link: %w", err)
	}
	return l, nil
}

// GetLink resolves a link by its token, or ErrLinkNotFound.
func (r *Repository) GetLink(ctx context.Context, token string) (Link, error) {
	var l Link
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token FROM links WHERE token = $1`,
		token,
	).Scan(&l.ID, &l.Token)
	if err == sql.ErrNoRows {
		return Link{}, ErrLinkNotFound
	}
	if err != nil {
		return Link{}, fmt.Errorf("survey: failed to get link: %w", err)
	}
	return l, nil
}

// CreateAnswer records a finalized answer. The unique index on
// (link_id, question_id) makes retries idempotent: a conflicting insert
// returns the already-recorded row instead of a duplicate.
func (r *Repository) CreateAnswer(ctx context.Context, a Answer) (Answer, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO answers (id, question_id, link_id, text, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (link_id, question_id) DO NOTHING
		RETURNING id`,
		a.ID, a.QuestionID, a.LinkID, a.Text, a.Score, a.CreatedAt,
	).Scan(&a.ID)
	if err == sql.ErrNoRows {
		return r.getAnswer(ctx, a.LinkID, a.QuestionID)
	}
	if err != nil {
		return Answer{}, fmt.Errorf("survey: failed to create answer: %w", err)
	}
	return a, nil
}

func (r *Repository) getAnswer(ctx context.Context, linkID, questionID int64) (Answer, error) {
	var a Answer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, question_id, link_id, text, score, created_at
		FROM answers WHERE link_id = $1 AND question_id = $2`,
		linkID, questionID,
	).Scan(&a.ID, &a.QuestionID, &a.LinkID, &a.Text, &a.Score, &a.CreatedAt)
	if err != nil {
		return Answer{}, fmt.Errorf("survey: failed to get answer: %w", err)
	}
	return a, nil
}

// ListAnswers returns all recorded answers for a link in recording order.
func (r *Repository) ListAnswers(ctx context.Context, linkID int64) ([]Answer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question_id, link_id, text, score, created_at
		FROM answers WHERE link_id = $1 ORDER BY created_at ASC`,
		linkID)
	if err != nil {
		return nil, fmt.Errorf("survey: failed to list answers: %w", err)
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.LinkID, &a.Text, &a.Score, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("survey: failed to scan answer: %w", err)
		}
		out = append(out, a)
	}
	if out == nil {
		out = []Answer{}
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package survey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wavecheck/surveypilot/pkg/logging"
)

// TurnEngine is the turn protocol consumed by the HTTP layer.
type TurnEngine interface {
	Begin(ctx context.Context, token string) (*TurnResult, error)
	Advance(ctx context.Context, token, text string) (*TurnResult, error)
}

// AdminStore is the subset of the repository the HTTP layer needs.
type AdminStore interface {
	CreateQuestion(ctx context.Context, text, guidelines string) (Question, error)
	ListQuestions(ctx context.Context) ([]Question, error)
	CreateLink(ctx context.Context) (Link, error)
	GetLink(ctx context.Context, token string) (Link, error)
	ListAnswers(ctx context.Context, linkID int64) ([]Answer, error)
}

// Handler wires HTTP requests to the survey engine and store.
type Handler struct {
	engine TurnEngine
	store  AdminStore
	logger *logging.Logger
}

func NewHandler(engine TurnEngine, store AdminStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

type createQuestionRequest struct {
	Text       string `json:"text"`
	Guidelines string `json:"guidelines,omitempty"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	Response string `json:"response"`
}

// CreateQuestion handles POST /api/questions.
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "question text is required", http.StatusBadRequest)
		return
	}

	q, err := h.store.CreateQuestion(r.Context(), req.Text, req.Guidelines)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, q)
}

// ListQuestions handles GET /api/questions.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, questions)
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.store.CreateLink(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, link)
}

// GetLink handles GET /api/links/{token}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.store.GetLink(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, link)
}

// StartSurvey handles POST /api/links/{token}/start.
func (h *Handler) StartSurvey(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	result, err := h.engine.Begin(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, turnResponse{Response: strings.Join(result.Messages, "\n\n")})
}

// Message handles POST /api/links/{token}/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "message text is required", http.StatusBadRequest)
		return
	}

	result, err := h.engine.Advance(r.Context(), token, req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, turnResponse{Response: strings.Join(result.Messages, "\n\n")})
}

// ListAnswers handles GET /api/links/{token}/answers.
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	link, err := h.store.GetLink(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	answers, err := h.store.ListAnswers(r.Context(), link.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, answers)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

// writeError maps the survey error taxonomy onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var valErr *ValidationError

	switch {
	case errors.Is(err, ErrLinkNotFound), errors.Is(err, ErrNoQuestions):
		http.Error(w, err.Error(), http.StatusNotFound)
	case IsUsage(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &valErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case IsRetryable(err):
		h.logger.Error("capability failure", "error", err)
		http.Error(w, "upstream capability failed, retry the request", http.StatusBadGateway)
	default:
		h.logger.Error("internal failure", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

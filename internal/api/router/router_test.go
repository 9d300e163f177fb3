package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecheck/surveypilot/internal/survey"
)

type noopEngine struct{}

func (noopEngine) Begin(context.Context, string) (*survey.TurnResult, error) {
	return &survey.TurnResult{Messages: []string{"What is your name?"}}, nil
}

func (noopEngine) Advance(context.Context, string, string) (*survey.TurnResult, error) {
	return &survey.TurnResult{Messages: []string{"ok"}}, nil
}

type noopStore struct{}

func (noopStore) CreateQuestion(_ context.Context, text, guidelines string) (survey.Question, error) {
	return survey.Question{ID: 1, Text: text, Guidelines: guidelines}, nil
}

func (noopStore) ListQuestions(context.Context) ([]survey.Question, error) {
	return []survey.Question{}, nil
}

func (noopStore) CreateLink(context.Context) (survey.Link, error) {
	return survey.Link{ID: 1, Token: "tok"}, nil
}

func (noopStore) GetLink(context.Context, string) (survey.Link, error) {
	return survey.Link{ID: 1, Token: "tok"}, nil
}

func (noopStore) ListAnswers(context.Context, int64) ([]survey.Answer, error) {
	return []survey.Answer{}, nil
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	return New(&Config{
		SurveyHandler:  survey.NewHandler(noopEngine{}, noopStore{}, nil),
		AdminJWTSecret: "test-secret",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpointMounted(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicRoutesRequireNoAuth(t *testing.T) {
	r := newRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/questions"},
		{http.MethodGet, "/api/links/tok"},
		{http.MethodPost, "/api/links/tok/start"},
		{http.MethodGet, "/api/links/tok/answers"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	r := newRouter(t)

	for _, path := range []string{"/api/questions", "/api/links"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAdminRouteAcceptsSignedToken(t *testing.T) {
	r := newRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/links", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

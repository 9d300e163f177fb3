package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wavecheck/surveypilot/internal/http/middleware"
	"github.com/wavecheck/surveypilot/internal/survey"
	"github.com/wavecheck/surveypilot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SurveyHandler      *survey.Handler
	AdminJWTSecret     string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		// Respondent-facing surface.
		api.Get("/questions", cfg.SurveyHandler.ListQuestions)
		api.Route("/links/{token}", func(link chi.Router) {
			link.Get("/", cfg.SurveyHandler.GetLink)
			link.Post("/start", cfg.SurveyHandler.StartSurvey)
			link.Post("/message", cfg.SurveyHandler.Message)
			link.Get("/answers", cfg.SurveyHandler.ListAnswers)
		})

		// Administration: question authoring and link minting.
		api.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Post("/questions", cfg.SurveyHandler.CreateQuestion)
			admin.Post("/links", cfg.SurveyHandler.CreateLink)
		})
	})

	return r
}

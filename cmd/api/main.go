package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wavecheck/surveypilot/internal/api/router"
	appconfig "github.com/wavecheck/surveypilot/internal/config"
	"github.com/wavecheck/surveypilot/internal/llm"
	"github.com/wavecheck/surveypilot/internal/observability/metrics"
	"github.com/wavecheck/surveypilot/internal/survey"
	"github.com/wavecheck/surveypilot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting surveypilot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(context.Background()); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	repo := survey.NewRepository(db)

	sessions, err := buildSessionStore(cfg, logger)
	if err != nil {
		logger.Error("failed to build session store", "error", err)
		os.Exit(1)
	}

	client, err := buildLLMClient(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}
	caps := survey.NewLLMCapabilities(client, cfg.BedrockModelID)

	surveyMetrics := metrics.NewSurveyMetrics(nil)

	engine := survey.NewEngine(survey.EngineConfig{
		Store:    repo,
		Sessions: sessions,
		Capabilities: survey.Capabilities{
			Classifier: caps,
			Questions:  caps,
			Probes:     caps,
			Recorder:   caps,
		},
		Logger:              logger,
		Metrics:             surveyMetrics,
		CapabilityTimeout:   cfg.CapabilityTimeout,
		MaxSkipsPerQuestion: cfg.MaxSkipsPerQuestion,
	})

	if cfg.SeedDemoQuestions {
		seedDemoQuestions(context.Background(), repo, logger)
	}

	handler := survey.NewHandler(engine, repo, logger)
	r := router.New(&router.Config{
		Logger:             logger,
		SurveyHandler:      handler,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) (survey.SessionStore, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR empty, using in-memory session store")
		return survey.NewMemorySessionStore(), nil
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return survey.NewRedisSessionStore(redis.NewClient(opts), cfg.SessionTTL), nil
}

// buildLLMClient selects the completion backend. When both providers are
// configured the secondary acts as a fallback.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	var bedrock llm.Client
	if cfg.BedrockModelID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	var gemini llm.Client
	if cfg.GeminiAPIKey != "" {
		g, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, err
		}
		gemini = g
	}

	switch cfg.LLMProvider {
	case "gemini":
		if gemini == nil {
			return nil, errors.New("LLM_PROVIDER=gemini requires GEMINI_API_KEY")
		}
		return llm.NewFallbackClient(gemini, bedrock, logger), nil
	default:
		if bedrock == nil {
			return nil, errors.New("LLM_PROVIDER=bedrock requires BEDROCK_MODEL_ID")
		}
		return llm.NewFallbackClient(bedrock, gemini, logger), nil
	}
}

// seedDemoQuestions loads the development question set once, matching the
// demo survey used by the frontend.
func seedDemoQuestions(ctx context.Context, repo *survey.Repository, logger *logging.Logger) {
	existing, err := repo.ListQuestions(ctx)
	if err != nil {
		logger.Error("failed to check existing questions", "error", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	demo := []struct{ text, guidelines string }{
		{"What is your name?", "Provide your full name. e.g. John Doe"},
		{"What is your age?", "Provide your age. e.g. 25"},
		{"What is your city?", "Provide your city. e.g. New York"},
	}
	for _, q := range demo {
		if _, err := repo.CreateQuestion(ctx, q.text, q.guidelines); err != nil {
			logger.Error("failed to seed question", "error", err, "text", q.text)
			return
		}
	}
	logger.Info("seeded demo questions", "count", len(demo))
}

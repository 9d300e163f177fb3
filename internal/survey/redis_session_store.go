package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// RedisSessionStore persists session snapshots as JSON values with a TTL, so
// each HTTP turn can resume where the previous one left off regardless of
// which process serves it.
type RedisSessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewRedisSessionStore(redisClient *redis.Client, ttl time.Duration) *RedisSessionStore {
	if redisClient == nil {
		panic("survey: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{
		redis:  redisClient,
		tracer: otel.Tracer("surveypilot.internal.survey.sessions"),
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "survey.session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("survey: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("survey: failed to decode session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = make(map[int64]Answer)
	}
	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "survey.session.put")
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("survey: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("survey: failed to persist session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("survey_session:%s", token)
}

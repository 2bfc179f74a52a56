package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxUpdateRetries = 20

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository creates a Redis-based SessionRepository. Every
// write refreshes the session key's TTL.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create stores a new session, failing if the id is taken.
func (r *redisSessionRepository) Create(ctx context.Context, s *Session) error {
	ctx, span := tracer.Start(ctx, "RedisSessionRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.ID))

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := r.rdb.SetNX(ctx, sessionKey(s.ID), data, r.ttl).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return fmt.Errorf("failed to create session in redis: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

// FindByID retrieves the current session state from Redis.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "RedisSessionRepository.FindByID")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	return r.get(ctx, r.rdb, id)
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the session in between.
func (r *redisSessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	ctx, span := tracer.Start(ctx, "RedisSessionRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	key := sessionKey(id)
	var updated *Session

	txf := func(tx *redis.Tx) error {
		s, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s.Game); err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal updated session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			span.AddEvent("optimistic lock conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	err := fmt.Errorf("failed to update session %s: too much contention", id)
	span.RecordError(err)
	span.SetStatus(codes.Error, "Update retries exhausted")
	return nil, err
}

// Delete removes the session key.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "RedisSessionRepository.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	n, err := r.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisSessionRepository) get(ctx context.Context, c stringGetter, id string) (*Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

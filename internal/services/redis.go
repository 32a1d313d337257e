package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"zonewatch/internal/rules"
)

const (
	actorKeyPrefix = "zonewatch:actor:"
	tankKeyPrefix  = "zonewatch:tanks:"
)

// RedisStorage implements Storage on Redis. Actor specs are JSON strings;
// tanks live in a per-actor hash keyed by tank id.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a Redis storage instance from a redis:// URL.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection blocks until Redis answers a ping or the retry budget
// is spent.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) GetActorSpec(ctx context.Context, actorID string) (*rules.ActorSpec, error) {
	data, err := r.client.Get(ctx, actorKeyPrefix+actorID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get actor %s: %w", actorID, err)
	}

	var spec rules.ActorSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor %s: %w", actorID, err)
	}
	return &spec, nil
}

func (r *RedisStorage) SaveActorSpec(ctx context.Context, spec *rules.ActorSpec) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal actor %s: %w", spec.ID, err)
	}
	if err := r.client.Set(ctx, actorKeyPrefix+spec.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save actor %s: %w", spec.ID, err)
	}
	return nil
}

func (r *RedisStorage) Tanks(ctx context.Context, actorID string) ([]rules.Tank, error) {
	entries, err := r.client.HGetAll(ctx, tankKeyPrefix+actorID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tanks for %s: %w", actorID, err)
	}

	tanks := make([]rules.Tank, 0, len(entries))
	for id, data := range entries {
		var t rules.Tank
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			r.logger.Warn("Skipping unreadable tank record",
				"actor_id", actorID,
				"tank_id", id,
				"error", err)
			continue
		}
		tanks = append(tanks, t)
	}
	return tanks, nil
}

func (r *RedisStorage) SaveTank(ctx context.Context, tank rules.Tank) error {
	data, err := json.Marshal(tank)
	if err != nil {
		return fmt.Errorf("failed to marshal tank %s: %w", tank.ID, err)
	}
	if err := r.client.HSet(ctx, tankKeyPrefix+tank.ActorID, tank.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save tank %s: %w", tank.ID, err)
	}
	return nil
}

// ActorFor loads an actor and rebuilds its runtime sheet with supply
// attributes recomputed from its tanks. For each kind with at least one
// tank on record, the derived total is the sum of active tank supply;
// kinds declared on the spec with no tank records keep their stored value,
// which is how the tracked total can exceed the enumerable tanks.
func (r *RedisStorage) ActorFor(ctx context.Context, actorID string) (*rules.Actor, error) {
	spec, err := r.GetActorSpec(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, nil
	}

	tanks, err := r.Tanks(ctx, actorID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	seen := make(map[string]bool)
	for _, t := range tanks {
		seen[t.Kind] = true
		if t.Active {
			totals[t.Kind] += t.Supply
		}
	}
	for kind := range seen {
		if _, declared := spec.Attributes[kind]; declared {
			spec.Attributes[kind] = totals[kind]
		}
	}

	return rules.NewActorFromSpec(spec)
}

// GetClient returns the underlying Redis client for direct operations.
func (r *RedisStorage) GetClient() *redis.Client {
	return r.client
}

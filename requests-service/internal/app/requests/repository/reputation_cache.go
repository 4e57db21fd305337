package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expertaid/pkg/metrics"
	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const reputationKeyPrefix = "expert_reputation"

// reputationCache хранит материализованную репутацию экспертов в Redis.
// Источник истины - Request Store; запись с истекшим TTL пересчитывается
// заново при чтении
type reputationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReputationCache создает новый кеш репутации
func NewReputationCache(client *redis.Client, ttl time.Duration) ReputationCache {
	return &reputationCache{
		client: client,
		ttl:    ttl,
	}
}

func reputationKey(expertID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", reputationKeyPrefix, expertID)
}

// Get получает репутацию из Redis; (nil, nil) при промахе кеша
func (r *reputationCache) Get(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, reputationKey(expertID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, reputationKeyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get reputation from cache: %w", err)
	}

	var reputation entity.ExpertReputation
	if err := json.Unmarshal(data, &reputation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reputation: %w", err)
	}

	metrics.RecordCacheHit(serviceName, reputationKeyPrefix)
	return &reputation, nil
}

// Set сохраняет репутацию в Redis с TTL
func (r *reputationCache) Set(ctx context.Context, reputation *entity.ExpertReputation) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(reputation)
	if err != nil {
		return fmt.Errorf("failed to marshal reputation: %w", err)
	}

	if err := r.client.Set(ctx, reputationKey(reputation.ExpertID), data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set reputation in cache: %w", err)
	}

	return nil
}

// Delete инвалидирует кешированную репутацию эксперта
func (r *reputationCache) Delete(ctx context.Context, expertID uuid.UUID) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, reputationKey(expertID)).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete reputation from cache: %w", err)
	}

	return nil
}

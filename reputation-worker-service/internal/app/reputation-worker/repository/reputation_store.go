package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// reputationStore пишет материализованную репутацию в Redis.
// Ключи и формат совпадают с кешем requests-service, поэтому
// пересчет worker-а сразу виден на read path
type reputationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReputationStore создает новое хранилище репутации
func NewReputationStore(client *redis.Client, ttl time.Duration) ReputationStore {
	return &reputationStore{
		client: client,
		ttl:    ttl,
	}
}

// Get читает репутацию эксперта; (nil, nil) при отсутствии ключа
func (s *reputationStore) Get(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	data, err := s.client.Get(ctx, entity.GetRedisKeyForReputation(expertID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reputation: %w", err)
	}

	var reputation entity.ExpertReputation
	if err := json.Unmarshal(data, &reputation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reputation: %w", err)
	}

	return &reputation, nil
}

// Set сохраняет репутацию эксперта с TTL
func (s *reputationStore) Set(ctx context.Context, reputation *entity.ExpertReputation) error {
	data, err := json.Marshal(reputation)
	if err != nil {
		return fmt.Errorf("failed to marshal reputation: %w", err)
	}

	key := entity.GetRedisKeyForReputation(reputation.ExpertID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set reputation: %w", err)
	}

	return nil
}

// Delete удаляет репутацию эксперта
func (s *reputationStore) Delete(ctx context.Context, expertID uuid.UUID) error {
	if err := s.client.Del(ctx, entity.GetRedisKeyForReputation(expertID)).Err(); err != nil {
		return fmt.Errorf("failed to delete reputation: %w", err)
	}

	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"expertaid/pkg/logger"
	"expertaid/pkg/metrics"
	"expertaid/requests-service/internal/app/requests/entity"
	"expertaid/requests-service/internal/app/requests/repository"

	"github.com/google/uuid"
)

// ReputationService публикует репутацию эксперта: среднее оценок по его
// завершенным и оцененным заявкам. Источник истины - Request Store,
// Redis выступает read-through кешем. Эксперт без оценок получает
// Rating = nil, а не 0.0
type ReputationService struct {
	requestRepo repository.RequestRepository
	cache       repository.ReputationCache
}

// NewReputationService создает новый сервис репутации
func NewReputationService(
	requestRepo repository.RequestRepository,
	cache repository.ReputationCache,
) *ReputationService {
	return &ReputationService{
		requestRepo: requestRepo,
		cache:       cache,
	}
}

// GetReputation возвращает репутацию эксперта, при промахе кеша
// пересчитывая ее из Request Store
func (s *ReputationService) GetReputation(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	cached, err := s.cache.Get(ctx, expertID)
	if err != nil {
		// Кеш недоступен - считаем из хранилища напрямую
		logger.Warn().Err(err).
			Str("expert_id", expertID.String()).
			Msg("Reputation cache read failed, falling back to store")
	}
	if cached != nil {
		return cached, nil
	}

	return s.Recompute(ctx, expertID)
}

// Recompute пересчитывает репутацию из Request Store и обновляет кеш.
// Вызывается после каждой записи отзыва
func (s *ReputationService) Recompute(ctx context.Context, expertID uuid.UUID) (*entity.ExpertReputation, error) {
	// Снимаем прежнюю запись до пересчета: при сбое агрегата читатели
	// уходят в источник истины, а не в устаревший кеш
	if err := s.cache.Delete(ctx, expertID); err != nil {
		logger.Warn().Err(err).
			Str("expert_id", expertID.String()).
			Msg("Failed to invalidate cached reputation")
	}

	stats, err := s.requestRepo.ExpertRatingStats(ctx, expertID)
	if err != nil {
		metrics.ReputationRecomputes.WithLabelValues("event", "failed").Inc()
		return nil, fmt.Errorf("failed to compute rating stats: %w", err)
	}

	reputation := &entity.ExpertReputation{
		ExpertID:    expertID,
		RatingCount: int(stats.Count),
		ComputedAt:  time.Now(),
	}
	if stats.Count > 0 {
		average := stats.Average
		reputation.Rating = &average
	}

	if err := s.cache.Set(ctx, reputation); err != nil {
		// Кеш не критичен: репутация уже вычислена из источника истины
		logger.Warn().Err(err).
			Str("expert_id", expertID.String()).
			Msg("Failed to cache expert reputation")
	}

	metrics.ReputationRecomputes.WithLabelValues("event", "success").Inc()

	return reputation, nil
}

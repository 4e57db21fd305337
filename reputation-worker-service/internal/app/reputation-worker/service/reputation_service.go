package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"expertaid/pkg/metrics"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"
	"expertaid/reputation-worker-service/internal/app/reputation-worker/repository"

	"github.com/google/uuid"
)

// Триггеры пересчета для метрик
const (
	triggerEvent = "event"
	triggerCron  = "cron"
)

// ReputationService пересчитывает репутацию экспертов из Request Store
// и материализует ее в Redis. Репутация - среднее оценок по завершенным
// заявкам; эксперт без оценок получает Rating nil
type ReputationService struct {
	ratingRepo repository.RatingRepository
	store      repository.ReputationStore
}

// NewReputationService создает новый сервис пересчета репутации
func NewReputationService(
	ratingRepo repository.RatingRepository,
	store repository.ReputationStore,
) *ReputationService {
	return &ReputationService{
		ratingRepo: ratingRepo,
		store:      store,
	}
}

// RecomputeExpert пересчитывает репутацию одного эксперта по событию
func (s *ReputationService) RecomputeExpert(ctx context.Context, expertID uuid.UUID) error {
	if err := s.recompute(ctx, expertID); err != nil {
		metrics.ReputationRecomputes.WithLabelValues(triggerEvent, "failed").Inc()
		return err
	}

	metrics.ReputationRecomputes.WithLabelValues(triggerEvent, "success").Inc()
	return nil
}

// ReconcileAll заново выводит репутацию каждого оцененного эксперта.
// Сверка чинит расхождения после потерянных событий или истекших TTL
func (s *ReputationService) ReconcileAll(ctx context.Context) error {
	started := time.Now()
	defer func() {
		metrics.ReputationSweepDuration.Observe(time.Since(started).Seconds())
	}()

	experts, err := s.ratingRepo.ListRatedExperts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list experts for reconciliation: %w", err)
	}

	var failed int
	for _, expertID := range experts {
		if err := s.recompute(ctx, expertID); err != nil {
			metrics.ReputationRecomputes.WithLabelValues(triggerCron, "failed").Inc()
			log.Printf("ERROR: Failed to reconcile reputation for expert %s: %v", expertID, err)
			failed++
			continue
		}
		metrics.ReputationRecomputes.WithLabelValues(triggerCron, "success").Inc()
	}

	s.updateStatusGauges(ctx)

	log.Printf("Reconciliation sweep finished: %d experts, %d failed", len(experts), failed)

	if failed > 0 {
		return fmt.Errorf("reconciliation incomplete: %d of %d experts failed", failed, len(experts))
	}
	return nil
}

// recompute выводит репутацию эксперта из агрегата и пишет ее в Redis
func (s *ReputationService) recompute(ctx context.Context, expertID uuid.UUID) error {
	stats, err := s.ratingRepo.ExpertRatingStats(ctx, expertID)
	if err != nil {
		return fmt.Errorf("failed to compute rating stats: %w", err)
	}

	reputation := &entity.ExpertReputation{
		ExpertID:    expertID,
		RatingCount: int(stats.Count),
		ComputedAt:  time.Now(),
	}

	// Отсутствие оценок - отсутствующая репутация, не 0.0
	if stats.Count > 0 {
		average := stats.Average
		reputation.Rating = &average
	}

	if err := s.store.Set(ctx, reputation); err != nil {
		return fmt.Errorf("failed to store reputation: %w", err)
	}

	return nil
}

// updateStatusGauges обновляет gauge заявок по статусам; ошибки
// не прерывают сверку
func (s *ReputationService) updateStatusGauges(ctx context.Context) {
	counts, err := s.ratingRepo.CountByStatus(ctx)
	if err != nil {
		log.Printf("WARNING: Failed to count requests by status: %v", err)
		return
	}

	for _, sc := range counts {
		metrics.RequestsByStatus.WithLabelValues(sc.Status).Set(float64(sc.Count))
	}
}
